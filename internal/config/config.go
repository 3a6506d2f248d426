// internal/config handles the robot profile: serial link settings, camera
// endpoint, per-arm servo calibration and workspace geometry. Profiles are
// stored as YAML so calibration tweaks survive restarts.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SeamusWaldron/cubebot"
)

// DefaultFileName is the profile looked for in the working directory when
// no explicit path is given.
const DefaultFileName = "cubebot.yaml"

// SerialConfig describes the Maestro link.
type SerialConfig struct {
	Port        string        `yaml:"port"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	Device      int           `yaml:"device"` // Pololu device number for chained boards
}

// CameraConfig points at the vision sidecar that reports facelet colors.
type CameraConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

// MotionConfig holds timing shared by both arms.
type MotionConfig struct {
	ActionTimeout time.Duration `yaml:"action_timeout"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
	Wiggle        bool          `yaml:"wiggle"`
	WiggleDegrees float64       `yaml:"wiggle_degrees"`
}

// ToleranceConfig bounds how far a confirmed servo position may sit from
// the commanded one before the move is treated as a desync.
type ToleranceConfig struct {
	AngleDegrees  float64 `yaml:"angle_degrees"`
	WidthFraction float64 `yaml:"width_fraction"`
}

// SolverConfig tunes the search.
type SolverConfig struct {
	MaxLength  int           `yaml:"max_length"`
	NodeBudget int64         `yaml:"node_budget"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ServoRange maps wrist degrees onto Maestro quarter-microsecond targets.
// MinQUS corresponds to 0 degrees and MaxQUS to SpanDegrees.
type ServoRange struct {
	MinQUS      int     `yaml:"min_qus"`
	MaxQUS      int     `yaml:"max_qus"`
	SpanDegrees float64 `yaml:"span_degrees"`
}

// QUS converts a wrist angle in degrees to a servo target. Angles outside
// the span are clamped.
func (r ServoRange) QUS(degrees float64) int {
	if degrees < 0 {
		degrees = 0
	}
	if degrees > r.SpanDegrees {
		degrees = r.SpanDegrees
	}
	return r.MinQUS + int(degrees/r.SpanDegrees*float64(r.MaxQUS-r.MinQUS)+0.5)
}

// Degrees converts a reported servo position back to wrist degrees.
func (r ServoRange) Degrees(qus int) float64 {
	return float64(qus-r.MinQUS) / float64(r.MaxQUS-r.MinQUS) * r.SpanDegrees
}

// GripRange maps the normalized gripper width (0 closed, 1 open) onto
// servo targets.
type GripRange struct {
	ClosedQUS int `yaml:"closed_qus"`
	OpenQUS   int `yaml:"open_qus"`
}

// QUS converts a normalized width to a servo target.
func (g GripRange) QUS(width float64) int {
	if width < 0 {
		width = 0
	}
	if width > 1 {
		width = 1
	}
	return g.ClosedQUS + int(width*float64(g.OpenQUS-g.ClosedQUS)+0.5)
}

// Width converts a reported servo position back to a normalized width.
func (g GripRange) Width(qus int) float64 {
	return float64(qus-g.ClosedQUS) / float64(g.OpenQUS-g.ClosedQUS)
}

// ArmConfig holds one arm's channels, calibration and workspace region.
type ArmConfig struct {
	GripChannel  int `yaml:"grip_channel"`
	WristChannel int `yaml:"wrist_channel"`

	Wrist ServoRange `yaml:"wrist"`
	Grip  GripRange  `yaml:"grip"`

	// Maestro speed and acceleration limits, in Maestro units. Zero means
	// unlimited and is almost never what a cube wants.
	Speed int `yaml:"speed"`
	Accel int `yaml:"accel"`

	HomeDegrees float64        `yaml:"home_degrees"`
	Region      cubebot.Region `yaml:"region"`
}

// WebConfig configures the control surface listener.
type WebConfig struct {
	Listen string `yaml:"listen"`
}

// HistoryConfig configures the solve history database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Profile is the full robot profile, models cubebot.yaml.
type Profile struct {
	Version   int             `yaml:"version"`
	Serial    SerialConfig    `yaml:"serial"`
	Camera    CameraConfig    `yaml:"camera"`
	Motion    MotionConfig    `yaml:"motion"`
	Tolerance ToleranceConfig `yaml:"tolerance"`
	Solver    SolverConfig    `yaml:"solver"`
	Left      ArmConfig       `yaml:"left_arm"`
	Right     ArmConfig       `yaml:"right_arm"`
	Web       WebConfig       `yaml:"web"`
	History   HistoryConfig   `yaml:"history"`
}

// Arm returns the config block for the given arm.
func (p *Profile) Arm(id cubebot.ArmID) ArmConfig {
	if id == cubebot.ArmLeft {
		return p.Left
	}
	return p.Right
}

// Calibration axes accepted by SetCalibration. Each names one recorded
// servo target: the wrist end stops and the two grip widths.
const (
	AxisWristMin   = "wrist-min"
	AxisWristMax   = "wrist-max"
	AxisGripOpen   = "grip-open"
	AxisGripClosed = "grip-closed"
)

// SetCalibration records a nudged servo target for one calibration point
// and re-validates the arm. qus is a raw Maestro quarter-microsecond
// target. The profile is left untouched on error.
func (p *Profile) SetCalibration(id cubebot.ArmID, axis string, qus int) error {
	var a *ArmConfig
	var name string
	switch id {
	case cubebot.ArmLeft:
		a, name = &p.Left, "left_arm"
	case cubebot.ArmRight:
		a, name = &p.Right, "right_arm"
	default:
		return fmt.Errorf("unknown arm %q", id)
	}

	prev := *a
	switch axis {
	case AxisWristMin:
		a.Wrist.MinQUS = qus
	case AxisWristMax:
		a.Wrist.MaxQUS = qus
	case AxisGripOpen:
		a.Grip.OpenQUS = qus
	case AxisGripClosed:
		a.Grip.ClosedQUS = qus
	default:
		return fmt.Errorf("unknown calibration axis %q", axis)
	}
	if err := validateArm(name, *a); err != nil {
		*a = prev
		return err
	}
	return nil
}

// Default returns a profile matching the reference build of the robot.
// Servo calibration always needs adjusting per unit; the geometry and
// timing defaults are usable as-is.
func Default() Profile {
	return Profile{
		Version: 1,
		Serial: SerialConfig{
			Port:        "/dev/ttyACM0",
			Baud:        9600,
			ReadTimeout: 500 * time.Millisecond,
			Device:      12,
		},
		Camera: CameraConfig{
			URL:     "http://127.0.0.1:8081/state",
			Timeout: 5 * time.Second,
			Retries: 2,
		},
		Motion: MotionConfig{
			ActionTimeout: 3 * time.Second,
			SettleDelay:   150 * time.Millisecond,
			Wiggle:        true,
			WiggleDegrees: 4,
		},
		Tolerance: ToleranceConfig{
			AngleDegrees:  cubebot.DefaultAngleTolerance,
			WidthFraction: cubebot.DefaultWidthTolerance,
		},
		Solver: SolverConfig{
			MaxLength:  30,
			NodeBudget: 4_000_000,
			Timeout:    20 * time.Second,
		},
		Left: ArmConfig{
			GripChannel:  0,
			WristChannel: 1,
			Wrist:        ServoRange{MinQUS: 2000, MaxQUS: 10000, SpanDegrees: 270},
			Grip:         GripRange{ClosedQUS: 5400, OpenQUS: 7600},
			Speed:        60,
			Accel:        20,
			HomeDegrees:  90,
			Region:       cubebot.Region{MinX: -120, MinY: -60, MaxX: 10, MaxY: 60},
		},
		Right: ArmConfig{
			GripChannel:  2,
			WristChannel: 3,
			Wrist:        ServoRange{MinQUS: 2000, MaxQUS: 10000, SpanDegrees: 270},
			Grip:         GripRange{ClosedQUS: 5200, OpenQUS: 7400},
			Speed:        60,
			Accel:        20,
			HomeDegrees:  90,
			Region:       cubebot.Region{MinX: -10, MinY: -60, MaxX: 120, MaxY: 60},
		},
		Web:     WebConfig{Listen: ":8080"},
		History: HistoryConfig{Path: "cubebot.db"},
	}
}

// Load reads a profile from path, falling back to defaults for a missing
// file. An empty path means DefaultFileName in the working directory.
func Load(path string) (*Profile, error) {
	if path == "" {
		path = DefaultFileName
	}
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &p, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	p.applyDefaults()
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &p, nil
}

// Save writes the profile to path, creating parent directories as needed.
func Save(p *Profile, path string) error {
	if path == "" {
		path = DefaultFileName
	}
	p.applyDefaults()
	if err := p.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: ensure %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (p *Profile) applyDefaults() {
	def := Default()
	if p.Version == 0 {
		p.Version = 1
	}
	if p.Serial.Baud == 0 {
		p.Serial.Baud = def.Serial.Baud
	}
	if p.Serial.ReadTimeout == 0 {
		p.Serial.ReadTimeout = def.Serial.ReadTimeout
	}
	if p.Camera.Timeout == 0 {
		p.Camera.Timeout = def.Camera.Timeout
	}
	if p.Motion.ActionTimeout == 0 {
		p.Motion.ActionTimeout = def.Motion.ActionTimeout
	}
	if p.Motion.SettleDelay == 0 {
		p.Motion.SettleDelay = def.Motion.SettleDelay
	}
	if p.Tolerance.AngleDegrees == 0 {
		p.Tolerance.AngleDegrees = def.Tolerance.AngleDegrees
	}
	if p.Tolerance.WidthFraction == 0 {
		p.Tolerance.WidthFraction = def.Tolerance.WidthFraction
	}
	if p.Solver.MaxLength == 0 {
		p.Solver.MaxLength = def.Solver.MaxLength
	}
	if p.Solver.NodeBudget == 0 {
		p.Solver.NodeBudget = def.Solver.NodeBudget
	}
	if p.Solver.Timeout == 0 {
		p.Solver.Timeout = def.Solver.Timeout
	}
	applyArmDefaults(&p.Left, def.Left)
	applyArmDefaults(&p.Right, def.Right)
	if p.Web.Listen == "" {
		p.Web.Listen = def.Web.Listen
	}
	if p.History.Path == "" {
		p.History.Path = def.History.Path
	}
}

func applyArmDefaults(a *ArmConfig, def ArmConfig) {
	if a.Wrist.SpanDegrees == 0 {
		a.Wrist.SpanDegrees = def.Wrist.SpanDegrees
	}
	if a.Wrist.MinQUS == 0 && a.Wrist.MaxQUS == 0 {
		a.Wrist = def.Wrist
	}
	if a.Grip.ClosedQUS == 0 && a.Grip.OpenQUS == 0 {
		a.Grip = def.Grip
	}
	if a.HomeDegrees == 0 {
		a.HomeDegrees = def.HomeDegrees
	}
	if a.Region.IsZero() {
		a.Region = def.Region
	}
}

func (p *Profile) validate() error {
	if p.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	if strings.TrimSpace(p.Serial.Port) == "" {
		return fmt.Errorf("serial.port is required")
	}
	if strings.TrimSpace(p.Camera.URL) == "" {
		return fmt.Errorf("camera.url is required")
	}
	if p.Tolerance.AngleDegrees <= 0 {
		return fmt.Errorf("tolerance.angle_degrees must be positive")
	}
	if p.Tolerance.WidthFraction <= 0 || p.Tolerance.WidthFraction > 1 {
		return fmt.Errorf("tolerance.width_fraction must be in (0, 1]")
	}
	if p.Solver.MaxLength < 20 {
		return fmt.Errorf("solver.max_length must be >= 20")
	}
	if err := validateArm("left_arm", p.Left); err != nil {
		return err
	}
	if err := validateArm("right_arm", p.Right); err != nil {
		return err
	}
	if p.Left.GripChannel == p.Right.GripChannel ||
		p.Left.WristChannel == p.Right.WristChannel {
		return fmt.Errorf("arms must use distinct servo channels")
	}
	return nil
}

func validateArm(name string, a ArmConfig) error {
	if a.GripChannel < 0 || a.GripChannel > 23 ||
		a.WristChannel < 0 || a.WristChannel > 23 {
		return fmt.Errorf("%s: servo channels must be in 0..23", name)
	}
	if a.GripChannel == a.WristChannel {
		return fmt.Errorf("%s: grip and wrist channels must differ", name)
	}
	if a.Wrist.MaxQUS <= a.Wrist.MinQUS {
		return fmt.Errorf("%s: wrist max_qus must exceed min_qus", name)
	}
	if a.Wrist.SpanDegrees <= 0 {
		return fmt.Errorf("%s: wrist span_degrees must be positive", name)
	}
	if a.Grip.OpenQUS == a.Grip.ClosedQUS {
		return fmt.Errorf("%s: grip open_qus and closed_qus must differ", name)
	}
	if a.HomeDegrees < 0 || a.HomeDegrees > a.Wrist.SpanDegrees {
		return fmt.Errorf("%s: home_degrees outside wrist span", name)
	}
	if a.Region.IsZero() {
		return fmt.Errorf("%s: region is required", name)
	}
	return nil
}
