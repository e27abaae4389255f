package encoder

import "fmt"

type x264Adapter struct{}

func (x264Adapter) Name() string { return "x264" }

func (x264Adapter) BuildArgv(opts BuildOptions) []string {
	argv := []string{"x264", "--demuxer", "y4m", "-"}
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

func (x264Adapter) ParseProgress(line string) (int, bool) { return parseFrameEquals(line) }
func (x264Adapter) QuantizerFlagName() string              { return "--crf" }
func (x264Adapter) SupportsTwoPass() bool                   { return true }
func (x264Adapter) PixelFormatArg(format string) []string   { return nil } // carried by the y4m stream header
func (x264Adapter) LegalQuantizerRange() (int, int)          { return 0, 51 }
