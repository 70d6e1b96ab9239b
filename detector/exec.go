package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"autodamage/models"
)

// ExecConfig describes how to run an external model script. The script is called as
//
//	<python> <script> --weights <weights> --conf <conf> <image>
//
// and must print a single JSON document shaped like models.RawDetectionSet.
type ExecConfig struct {
	Python  string
	Script  string
	Weights string
	Conf    float64
	Timeout time.Duration
}

type ExecDetector struct {
	kind   Kind
	cfg    ExecConfig
	logger *zap.Logger
}

func NewExecDetector(kind Kind, cfg ExecConfig, logger *zap.Logger) *ExecDetector {
	return &ExecDetector{
		kind:   kind,
		cfg:    cfg,
		logger: logger.Named(string(kind) + "_detector"),
	}
}

func (d *ExecDetector) Detect(ctx context.Context, imagePath string) (*models.DetectionSet, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	args := []string{
		d.cfg.Script,
		"--weights", d.cfg.Weights,
		"--conf", strconv.FormatFloat(d.cfg.Conf, 'f', -1, 64),
		imagePath,
	}
	cmd := exec.CommandContext(ctx, d.cfg.Python, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		d.logger.Error("detector process failed",
			zap.String("image", imagePath),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s detector: %w", d.kind, err)
	}

	set, err := ParseOutput(stdout.Bytes(), d.kind)
	if err != nil {
		return nil, fmt.Errorf("%s detector: %w", d.kind, err)
	}

	d.logger.Debug("detector finished",
		zap.String("image", imagePath),
		zap.Int("detections", len(set.Detections)),
		zap.Duration("took", time.Since(start)),
	)

	return set, nil
}

// ParseOutput decodes and checks the JSON printed by a model script.
func ParseOutput(data []byte, kind Kind) (*models.DetectionSet, error) {
	var raw models.RawDetectionSet
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode output: %v: %w", err, models.ErrInvalidInput)
	}

	return raw.Parse(kind.RequiresConfidence())
}
