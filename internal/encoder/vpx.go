package encoder

import "fmt"

type vpxAdapter struct{}

func (vpxAdapter) Name() string { return "vpx" }

func (vpxAdapter) BuildArgv(opts BuildOptions) []string {
	argv := []string{"vpxenc", "-", "--codec=vp9"}
	if opts.Quantizer != nil {
		argv = append(argv, fmt.Sprintf("--cq-level=%d", *opts.Quantizer), "--end-usage=cq")
	}
	argv = append(argv, vpxAdapter{}.PixelFormatArg(opts.PixFormat)...)
	if opts.Pass > 0 {
		argv = append(argv, fmt.Sprintf("--passes=2"), fmt.Sprintf("--pass=%d", opts.Pass), "--fpf="+opts.StatsPath)
	}
	argv = append(argv, opts.UserArgs...)
	argv = append(argv, "-o", opts.OutputPath)
	return argv
}

func (vpxAdapter) ParseProgress(line string) (int, bool) { return parseFrameEquals(line) }
func (vpxAdapter) QuantizerFlagName() string              { return "--cq-level" }
func (vpxAdapter) SupportsTwoPass() bool                   { return true }
func (vpxAdapter) PixelFormatArg(format string) []string {
	switch format {
	case "yuv444p", "yuv444p10le":
		return []string{"--i444"}
	default:
		return []string{"--i420"}
	}
}
func (vpxAdapter) LegalQuantizerRange() (int, int) { return 0, 63 }
