package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubebot/internal/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP control surface",
	Long: `Start the HTTP API in front of the robot. The browser panel and other
clients trigger solves, abort, jog arms and read status over it.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default: from profile)")
}

func runServe(cmd *cobra.Command, args []string) error {
	h, err := newBot()
	if err != nil {
		return err
	}
	defer h.Close()

	addr := serveListen
	if addr == "" {
		addr = h.Profile.Web.Listen
	}

	srv := web.NewServer(addr, h.Bot, h.Repo, h.Logger.Named("web"))
	if err := srv.Start(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("Listening on %s\n", srv.Addr())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs

	fmt.Println("Shutting down...")
	_ = h.Bot.Abort()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
