package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/config"
	"github.com/ayusman/fingerquiz/internal/tray"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr     string
		withTray bool
		webDir   string
		bank     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("tray") {
				cfg.Tray = withTray
			}
			if flags.Changed("web") {
				cfg.WebDir = webDir
			}
			if flags.Changed("questions") {
				cfg.Questions = bank
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().BoolVar(&withTray, "tray", false, "show a system tray menu")
	cmd.Flags().StringVar(&webDir, "web", "", "directory with the web page")
	cmd.Flags().StringVar(&bank, "questions", "", "question bank (.json, .yaml)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	rt, err := Build(cfg, app.Deps{})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			rt.Logger.Warnw("failed to close", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpSrv := rt.Server.HTTPServer(cfg.Addr)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rt.Logger.Infow("starting server", "addr", cfg.Addr, "tls", cfg.TLSCert != "")
		var err error
		if cfg.TLSCert != "" {
			err = httpSrv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = httpSrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		rt.Logger.Info("shutting down server")
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if cfg.Tray {
		t := newTray(gctx, rt, cancel)
		go func() {
			<-gctx.Done()
			t.Quit()
		}()
		t.Run()
	}

	return g.Wait()
}

// newTray wires the tray menu to the game. The camera item follows camera
// events so changes made from the page show up too.
func newTray(ctx context.Context, rt *Runtime, quit func()) *tray.Tray {
	t := tray.New()
	t.OnToggle(func(on bool) error {
		if on {
			return rt.App.OpenCamera()
		}
		return rt.App.CloseCamera()
	})
	t.OnOpen(func() {
		url := pageURL(rt.Config)
		if err := openBrowser(url); err != nil {
			rt.Logger.Warnw("failed to open browser", "url", url, "error", err)
		}
	})
	t.OnQuit(quit)
	rt.App.OnSessionEnd(t.SetLastSession)

	events, unsubscribe := rt.App.Events().Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-events:
				if !ok {
					return
				}
				if open, ok := cameraOpen(msg); ok {
					t.SetCamera(open)
				}
			}
		}
	}()

	return t
}

// cameraOpen decodes a camera event.
func cameraOpen(msg []byte) (bool, bool) {
	var m struct {
		Type string          `json:"type"`
		Data app.CameraState `json:"data"`
	}
	if err := json.Unmarshal(msg, &m); err != nil || m.Type != app.MessageCamera {
		return false, false
	}
	return m.Data.Open, true
}

// pageURL is the address of the quiz page on this machine.
func pageURL(cfg config.Config) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	scheme := "http"
	if cfg.TLSCert != "" {
		scheme = "https"
	}
	host := cfg.Addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return scheme + "://" + host + "/"
}
