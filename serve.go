package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/solitaire/api"
	"github.com/wricardo/solitaire/transport/mcp"
	"github.com/wricardo/solitaire/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "port", Value: "8080", Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides host and port", Sources: cli.EnvVars("ADDR")},
			&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: runServe,
	}
}

func listenAddr(addr, host, port string) (string, error) {
	if addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return "", fmt.Errorf("invalid addr %q: %w", addr, err)
		}
		return addr, nil
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return "", fmt.Errorf("invalid port %q", port)
	}
	return net.JoinHostPort(host, strconv.Itoa(p)), nil
}

// newHandler mounts the API at the root and the MCP tools at /mcp
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
	return mux
}

// runServe starts the HTTP server and, when enabled, an ngrok tunnel serving the
// same handler. It stops on SIGINT or SIGTERM and saves every session on the way out.
func runServe(ctx context.Context, cmd *cli.Command) error {
	s, err := settingsFrom(cmd)
	if err != nil {
		return err
	}
	addr, err := listenAddr(cmd.String("addr"), cmd.String("host"), cmd.String("port"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStack(ctx, s)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer st.Close()
	st.startMaintenance(ctx)

	apiOpts, err := st.apiOptions(s)
	if err != nil {
		return err
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(st.service, hub, apiOpts...)
	mcpClient := mcp.NewClient("http://" + addr)
	handler := newHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("version", Version).Msgf("starting %s", AppName)

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().
			Str("addr", addr).
			Str("api", "http://"+addr+"/api").
			Str("websocket", "ws://"+addr+"/ws?session=<session_id>").
			Str("mcp", "http://"+addr+"/mcp").
			Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runTunnel(ctx, handler, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"))
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	wg.Wait()

	if err := st.sessions.SaveAllSessions(); err != nil {
		log.Error().Err(err).Msg("failed to save sessions")
	}
	log.Info().Msg("server stopped")
	return nil
}

// runTunnel serves handler through ngrok until ctx is cancelled
func runTunnel(ctx context.Context, handler http.Handler, authToken, domain string) {
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	log.Info().Str("domain", domain).Msg("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().
		Str("url", url).
		Str("api", url+"/api").
		Str("mcp", url+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run an MCP stdio server backed by the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "REST API to use when it is reachable", Sources: cli.EnvVars("SOLITAIRE_API_URL")},
			&cli.StringFlag{Name: "token", Usage: "player token sent with every call", Sources: cli.EnvVars("SOLITAIRE_TOKEN")},
		},
		Action: runStdioMCP,
	}
}

func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// runStdioMCP serves MCP over stdio. It reuses the API at --api-url when it
// answers; otherwise it starts an internal API bound to a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("api-url")

	if apiReachable(ctx, baseURL) {
		log.Info().Str("api", baseURL).Msg("using external API server")
	} else {
		log.Info().Str("api", baseURL).Msg("no external API server found, starting internal one")

		s, err := settingsFrom(cmd)
		if err != nil {
			return err
		}
		st, err := buildStack(ctx, s)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer st.Close()
		defer func() {
			if err := st.sessions.SaveAllSessions(); err != nil {
				log.Error().Err(err).Msg("failed to save sessions")
			}
		}()

		apiOpts, err := st.apiOptions(s)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		hubCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go hub.Run(hubCtx)

		internal := &http.Server{Handler: api.NewServer(st.service, hub, apiOpts...)}
		go func() {
			if err := internal.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer internal.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("api", baseURL).Msg("internal HTTP server started")
	}

	var opts []mcp.ClientOption
	if token := cmd.String("token"); token != "" {
		opts = append(opts, mcp.WithToken(token))
	}
	client := mcp.NewClient(baseURL, opts...)

	log.Info().Msg("MCP stdio server ready")
	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
