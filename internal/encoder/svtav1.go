package encoder

import "fmt"

type svtAv1Adapter struct{}

func (svtAv1Adapter) Name() string { return "svt-av1" }

func (svtAv1Adapter) BuildArgv(opts BuildOptions) []string {
	argv := []string{"SvtAv1EncApp", "-i", "stdin", "-b", opts.OutputPath}
	if opts.Quantizer != nil {
		argv = append(argv, "--crf", fmt.Sprintf("%d", *opts.Quantizer))
	}
	if opts.Pass > 0 {
		argv = append(argv, "--pass", fmt.Sprintf("%d", opts.Pass), "--stats", opts.StatsPath)
	}
	argv = append(argv, svtAv1Adapter{}.PixelFormatArg(opts.PixFormat)...)
	argv = append(argv, opts.UserArgs...)
	return argv
}

func (svtAv1Adapter) ParseProgress(line string) (int, bool) { return parseFrameEquals(line) }
func (svtAv1Adapter) QuantizerFlagName() string              { return "--crf" }
func (svtAv1Adapter) SupportsTwoPass() bool                   { return true }
func (svtAv1Adapter) PixelFormatArg(format string) []string {
	if format == "" {
		return nil
	}
	return []string{"--input-depth", bitDepthFromFormat(format)}
}
func (svtAv1Adapter) LegalQuantizerRange() (int, int) { return 0, 63 }

func bitDepthFromFormat(format string) string {
	if len(format) >= 2 && format[len(format)-2:] == "le" {
		return "10"
	}
	return "8"
}
