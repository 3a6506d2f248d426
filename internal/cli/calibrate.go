package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubebot"
	"github.com/SeamusWaldron/cubebot/internal/config"
)

var (
	calibrateSave  bool
	calibrateArm   string
	calibrateAxis  string
	calibrateValue int
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Sweep the arms or nudge one calibration point",
	Long: `Without flags, run both arms through release, full wrist sweep and grip
so the servo calibration can be checked against the physical cube.

With --arm and --axis, drive that single servo to --value (a raw target in
quarter microseconds) and record it as the new calibration point. Axes:
wrist-min, wrist-max, grip-open, grip-closed. Use --save to write the
updated profile back out.`,
	RunE: runCalibrate,
}

func init() {
	rootCmd.AddCommand(calibrateCmd)
	calibrateCmd.Flags().BoolVar(&calibrateSave, "save", false, "Write the active profile to disk")
	calibrateCmd.Flags().StringVar(&calibrateArm, "arm", "", "Arm to nudge (left or right)")
	calibrateCmd.Flags().StringVar(&calibrateAxis, "axis", "", "Calibration axis (wrist-min, wrist-max, grip-open, grip-closed)")
	calibrateCmd.Flags().IntVar(&calibrateValue, "value", 0, "Servo target in quarter microseconds")
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	h, err := newBot()
	if err != nil {
		return err
	}
	defer h.Close()

	switch {
	case calibrateArm == "" && calibrateAxis == "":
		fmt.Println("Sweeping arms...")
		if err := h.Bot.Calibrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Both arms swept their full range and regripped.")
	case calibrateArm == "" || calibrateAxis == "":
		return fmt.Errorf("--arm and --axis must be given together")
	default:
		arm := cubebot.ArmID(calibrateArm)
		if arm != cubebot.ArmLeft && arm != cubebot.ArmRight {
			return fmt.Errorf("unknown arm %q, want left or right", calibrateArm)
		}
		if err := h.Bot.CalibratePoint(cmd.Context(), arm, calibrateAxis, calibrateValue); err != nil {
			return err
		}
		fmt.Printf("%s %s set to %d\n", arm, calibrateAxis, calibrateValue)
	}

	if calibrateSave {
		path := configPath
		if path == "" {
			path = config.DefaultFileName
		}
		if err := config.Save(h.Profile, path); err != nil {
			return err
		}
		fmt.Printf("Profile written to %s\n", path)
	}
	return nil
}
