package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"ProductCanvas/internal/config"
	"ProductCanvas/internal/editor"
	pcnet "ProductCanvas/internal/net"
	"ProductCanvas/internal/render"
	"ProductCanvas/internal/state"
	"ProductCanvas/internal/ui"

	"github.com/gogpu/gg"
)

func main() {
	cfg, args, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}
	if cfg.Debug {
		gg.SetLogger(slog.Default())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r, err := newRenderer()
	if err != nil {
		log.Fatalf("[RENDER] %v", err)
	}

	switch {
	case cfg.Render.Document != "":
		if err := renderDocument(ctx, cfg, r); err != nil {
			log.Fatalf("[RENDER] %v", err)
		}
	case len(args) > 0 && args[0] == "discover":
		discover()
	case len(args) > 0 && strings.HasPrefix(args[0], pcnet.Scheme):
		runViewer(ctx, args[0], r)
	default:
		runEditor(ctx, cfg, r)
	}
}

func newRenderer() (*render.Renderer, error) {
	fonts, err := render.NewFonts()
	if err != nil {
		return nil, err
	}
	return render.NewRenderer(fonts), nil
}

func newEditor(cfg config.Config) *editor.Editor {
	ed := editor.New(
		editor.WithHistoryLimit(cfg.History.Limit),
		editor.WithPasteOffset(cfg.History.PasteOffset),
		editor.WithCanvasSize(cfg.Canvas.Width, cfg.Canvas.Height),
		editor.WithImageMaxSide(cfg.ImageMaxSide),
	)
	ed.SetBackground(state.Background{Kind: state.BackgroundSolid, Color: cfg.Canvas.Background})
	return ed
}

// renderDocument exports a saved document without opening a window.
func renderDocument(ctx context.Context, cfg config.Config, r *render.Renderer) error {
	f, err := os.Open(cfg.Render.Document)
	if err != nil {
		return err
	}
	doc, err := state.DecodeDocument(f)
	f.Close()
	if err != nil {
		return err
	}

	ed := newEditor(cfg)
	if err := ed.Load(ctx, doc); err != nil {
		return err
	}
	out, err := os.Create(cfg.Render.Output)
	if err != nil {
		return err
	}
	w, h := ed.Size()
	if err := r.ExportPNG(out, ed.Scene(), w, h); err != nil {
		out.Close()
		return err
	}
	log.Printf("[RENDER] Wrote %s (%dx%d)", cfg.Render.Output, w, h)
	return out.Close()
}

func discover() {
	log.Println("Looking for editors on the local network")
	err := pcnet.Browse(3*time.Second, func(link string) {
		fmt.Println(link)
	})
	if err != nil {
		log.Fatalf("[MDNS] %v", err)
	}
}

func runEditor(ctx context.Context, cfg config.Config, r *render.Renderer) {
	log.Println("Starting as EDITOR")
	ed := newEditor(cfg)

	shareLink := ""
	if cfg.Preview.Enabled {
		hub := pcnet.NewHub()
		go func() {
			if err := hub.ListenAndServe(ctx, cfg.Preview.Port); err != nil {
				log.Printf("[PREVIEW] Server stopped: %v", err)
			}
		}()
		ed.Scene().Subscribe(func(state.Change) {
			hub.Publish(ed.ID(), ed.Document())
		})
		hub.Publish(ed.ID(), ed.Document())

		if cfg.Preview.Advertise {
			server, err := pcnet.Advertise(cfg.Preview.Port, ed.ID())
			if err != nil {
				log.Printf("[MDNS] Not advertising: %v", err)
			} else {
				defer server.Shutdown()
			}
		}

		host, err := pcnet.GetOutgoingIP()
		if err != nil {
			log.Printf("[PREVIEW] No outgoing address, using loopback: %v", err)
			host = "127.0.0.1"
		}
		shareLink = pcnet.ShareLink(host, cfg.Preview.Port)
	}
	ui.RunApp(ctx, ed, r, cfg.Canvas.Font, shareLink)
}

func runViewer(ctx context.Context, link string, r *render.Renderer) {
	log.Println("Starting as VIEWER")
	ed := editor.New()
	ui.RunViewer(ed, r, func(status func(string)) {
		v, err := pcnet.Dial(ctx, link)
		if err != nil {
			status(fmt.Sprintf("Connection failed: %v", err))
			return
		}
		defer v.Close()
		status("Connected as " + v.LocalAddr())

		for {
			m, err := v.Next()
			if err != nil {
				status(fmt.Sprintf("Disconnected from editor: %v", err))
				return
			}
			if m.Type != pcnet.MessageScene || m.Document == nil {
				continue
			}
			if err := ed.Load(ctx, *m.Document); err != nil {
				log.Printf("[PREVIEW] Skipping update %d: %v", m.Version, err)
				continue
			}
			status(fmt.Sprintf("Following %s (update %d)", m.Session, m.Version))
		}
	})
}
