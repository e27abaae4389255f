package encoder

import "fmt"

type aomAdapter struct{}

func (aomAdapter) Name() string { return "aom" }

func (aomAdapter) BuildArgv(opts BuildOptions) []string {
	argv := []string{"aomenc", "-", "--ivf"}
	if opts.Quantizer != nil {
		argv = append(argv, fmt.Sprintf("--cq-level=%d", *opts.Quantizer), "--end-usage=q")
	}
	argv = append(argv, aomAdapter{}.PixelFormatArg(opts.PixFormat)...)
	if opts.Pass > 0 {
		argv = append(argv, fmt.Sprintf("--passes=2"), fmt.Sprintf("--pass=%d", opts.Pass), "--fpf="+opts.StatsPath)
	}
	argv = append(argv, opts.UserArgs...)
	argv = append(argv, "-o", opts.OutputPath)
	return argv
}

func (aomAdapter) ParseProgress(line string) (int, bool) { return parseFrameEquals(line) }
func (aomAdapter) QuantizerFlagName() string              { return "--cq-level" }
func (aomAdapter) SupportsTwoPass() bool                   { return true }
func (aomAdapter) PixelFormatArg(format string) []string {
	switch format {
	case "yuv444p", "yuv444p10le":
		return []string{"--i444"}
	case "yuv422p", "yuv422p10le":
		return []string{"--i422"}
	default:
		return []string{"--i420"}
	}
}
func (aomAdapter) LegalQuantizerRange() (int, int) { return 0, 63 }
