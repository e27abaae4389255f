package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// overlay mirrors the subset of Config fields that may be set from a YAML
// file via --config. Fields are pointers so an absent key leaves the
// flag-driven default untouched.
type overlay struct {
	Encoder        *string  `yaml:"encoder"`
	EncoderArgs    *string  `yaml:"encoder_args"`
	PixFormat      *string  `yaml:"pix_format"`
	ChunkMethod    *string  `yaml:"chunk_method"`
	ScenecutMethod *string  `yaml:"scenecut_method"`
	ExtraSplit     *int     `yaml:"extra_split"`
	Workers        *int     `yaml:"workers"`
	ConcatMethod   *string  `yaml:"concat_method"`
	ChunkOrder     *string  `yaml:"chunk_order"`
	TargetQuality  *bool    `yaml:"target_quality"`
	TargetVMAF     *float64 `yaml:"target_vmaf"`
	VMAFTolerance  *float64 `yaml:"vmaf_tolerance"`
	ProbeSlow      *bool    `yaml:"probe_slow"`
	ProbeSteps     *int     `yaml:"probe_steps"`
	MinQuantizer   *int     `yaml:"min_q"`
	MaxQuantizer   *int     `yaml:"max_q"`
	ScoreFinalVMAF *bool    `yaml:"vmaf"`
	TempDir        *string  `yaml:"temp"`
	ThreadAffinity *int     `yaml:"set_thread_affinity"`
	Retries        *int     `yaml:"retries"`
}

// ApplyYAMLOverlay reads the YAML file at path and merges any keys it sets
// into c. Flags the user set explicitly still take precedence, since the
// CLI's buildConfig copies every changed flag into c after this call.
func (c *Config) ApplyYAMLOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var o overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if o.Encoder != nil {
		enc, err := ParseEncoder(*o.Encoder)
		if err != nil {
			return err
		}
		c.Encoder = enc
	}
	if o.EncoderArgs != nil {
		c.EncoderArgs = *o.EncoderArgs
	}
	if o.PixFormat != nil {
		c.PixFormat = *o.PixFormat
	}
	if o.ChunkMethod != nil {
		m, err := ParseChunkMethod(*o.ChunkMethod)
		if err != nil {
			return err
		}
		c.ChunkMethod = m
	}
	if o.ScenecutMethod != nil {
		m, err := ParseScenecutMethod(*o.ScenecutMethod)
		if err != nil {
			return err
		}
		c.ScenecutMethod = m
	}
	if o.ExtraSplit != nil {
		c.ExtraSplit = *o.ExtraSplit
	}
	if o.Workers != nil {
		c.Workers = *o.Workers
	}
	if o.ConcatMethod != nil {
		m, err := ParseConcatMethod(*o.ConcatMethod)
		if err != nil {
			return err
		}
		c.ConcatMethod = m
	}
	if o.ChunkOrder != nil {
		order, err := ParseChunkOrder(*o.ChunkOrder)
		if err != nil {
			return err
		}
		c.ChunkOrder = order
	}
	if o.TargetQuality != nil {
		c.TargetQuality = *o.TargetQuality
	}
	if o.TargetVMAF != nil {
		c.TargetVMAF = *o.TargetVMAF
	}
	if o.VMAFTolerance != nil {
		c.VMAFTolerance = *o.VMAFTolerance
	}
	if o.ProbeSlow != nil {
		c.ProbeSlow = *o.ProbeSlow
	}
	if o.ProbeSteps != nil {
		c.ProbeSteps = *o.ProbeSteps
	}
	if o.MinQuantizer != nil {
		c.MinQuantizer = *o.MinQuantizer
	}
	if o.MaxQuantizer != nil {
		c.MaxQuantizer = *o.MaxQuantizer
	}
	if o.ScoreFinalVMAF != nil {
		c.ScoreFinalVMAF = *o.ScoreFinalVMAF
	}
	if o.TempDir != nil {
		c.TempDir = *o.TempDir
	}
	if o.ThreadAffinity != nil {
		c.ThreadAffinity = *o.ThreadAffinity
	}
	if o.Retries != nil {
		c.Retries = *o.Retries
	}

	return nil
}
