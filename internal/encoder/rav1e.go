package encoder

import "fmt"

type rav1eAdapter struct{}

func (rav1eAdapter) Name() string { return "rav1e" }

func (rav1eAdapter) BuildArgv(opts BuildOptions) []string {
	argv := []string{"rav1e", "-"}
	if opts.Quantizer != nil {
		argv = append(argv, "--quantizer", fmt.Sprintf("%d", *opts.Quantizer))
	}
	argv = append(argv, rav1eAdapter{}.PixelFormatArg(opts.PixFormat)...)
	argv = append(argv, opts.UserArgs...)
	argv = append(argv, "-o", opts.OutputPath)
	return argv
}

func (rav1eAdapter) ParseProgress(line string) (int, bool) { return parseFrameEquals(line) }
func (rav1eAdapter) QuantizerFlagName() string              { return "--quantizer" }
func (rav1eAdapter) SupportsTwoPass() bool                   { return false }
func (rav1eAdapter) PixelFormatArg(format string) []string {
	return []string{"--pixel-format", format}
}
func (rav1eAdapter) LegalQuantizerRange() (int, int) { return 0, 255 }
