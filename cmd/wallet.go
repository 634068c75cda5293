package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/ajer/networks"
	"github.com/tranvictor/ajer/provider"
	"github.com/tranvictor/ajer/ui"
)

var (
	ServeAddr    string
	ServeOrigins []string
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Run the local keystore wallet",
	Long:  ``,
}

var serveWalletCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the keystore wallet over websocket so other ajer commands can use it with --wallet-url",
	Long: `Serve unlocks nothing up front: the keystore password is asked the first
time a client requests the account, and every request needing approval
(connecting, switching or adding a network, sending a transaction) is
prompted on this terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u := ui.NewTerminalUI()
		cfg, log, err := loadConfig(u)
		if err != nil {
			return err
		}
		defer log.Sync()
		if cfg.Keystore == "" {
			return fmt.Errorf("no keystore configured, set it in %s or pass --keystore", configPath())
		}
		w, err := newWallet(cfg, u, log)
		if err != nil {
			return err
		}
		server, err := provider.NewServer(w)
		if err != nil {
			return err
		}
		defer server.Stop()

		ws := server.WebsocketHandler(ServeOrigins)
		httpServer := &http.Server{
			Addr: ServeAddr,
			Handler: http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
				if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
					ws.ServeHTTP(rw, r)
					return
				}
				server.ServeHTTP(rw, r)
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errs := make(chan error, 1)
		go func() {
			errs <- httpServer.ListenAndServe()
		}()
		chain := fmt.Sprintf("chain %d", w.ChainID())
		if name, ok := networks.DisplayName(w.ChainID()); ok {
			chain = name
		}
		u.KeyValue([][2]string{
			{"Keystore", cfg.Keystore},
			{"Chain", chain},
			{"Listening", "ws://" + ServeAddr},
		})
		log.Info("wallet serving", zap.String("addr", ServeAddr))

		select {
		case err := <-errs:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		u.Info("Shutting down.")
		return httpServer.Shutdown(shutdownCtx)
	},
}

var chainsWalletCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the chains the keystore wallet can switch to",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := ui.NewTerminalUI()
		cfg, log, err := loadConfig(u)
		if err != nil {
			return err
		}
		w, err := newWallet(cfg, u, log)
		if err != nil {
			return err
		}
		rows := [][]string{}
		for _, n := range w.Chains() {
			current := ""
			if n.GetChainID() == w.ChainID() {
				current = "*"
			}
			rows = append(rows, []string{current, fmt.Sprintf("%d", n.GetChainID()), n.GetDisplayName()})
		}
		u.Table([]string{"", "Chain ID", "Name"}, rows)
		return nil
	},
}

func init() {
	serveWalletCmd.Flags().StringVar(&ServeAddr, "addr", "127.0.0.1:8546", "address to listen on")
	serveWalletCmd.Flags().StringSliceVar(&ServeOrigins, "origins", []string{"*"}, "allowed websocket origins")

	walletCmd.AddCommand(serveWalletCmd)
	walletCmd.AddCommand(chainsWalletCmd)
	rootCmd.AddCommand(walletCmd)
}
