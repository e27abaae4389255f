package encoder

import "fmt"

type x265Adapter struct{}

func (x265Adapter) Name() string { return "x265" }

func (x265Adapter) BuildArgv(opts BuildOptions) []string {
	argv := []string{"x265", "--y4m", "-"}
	if opts.Quantizer != nil {
		argv = append(argv, "--crf", fmt.Sprintf("%d", *opts.Quantizer))
	}
	if opts.Pass > 0 {
		argv = append(argv, "--pass", fmt.Sprintf("%d", opts.Pass), "--stats", opts.StatsPath)
	}
	argv = append(argv, opts.UserArgs...)
	argv = append(argv, "-o", opts.OutputPath)
	return argv
}

func (x265Adapter) ParseProgress(line string) (int, bool) { return parseFrameEquals(line) }
func (x265Adapter) QuantizerFlagName() string              { return "--crf" }
func (x265Adapter) SupportsTwoPass() bool                   { return true }
func (x265Adapter) PixelFormatArg(format string) []string   { return nil } // carried by the y4m stream header
func (x265Adapter) LegalQuantizerRange() (int, int)          { return 0, 51 }
