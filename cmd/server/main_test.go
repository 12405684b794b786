package main

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rpggio/rerx/internal/app"
	"github.com/rpggio/rerx/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRun_ClosesStoreOnServerError(t *testing.T) {
	// hold the port so ListenAndServe fails
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	dir := t.TempDir()
	storeCfg := config.StoreConfig{
		Backend:    config.BackendBadger,
		DBPath:     filepath.Join(dir, "activity.db"),
		BadgerPath: filepath.Join(dir, "badger"),
	}
	t.Setenv("RERX_CONFIG_PATH", "")
	t.Setenv("RERX_TRANSPORT_MODE", config.TransportHTTP)
	t.Setenv("RERX_SERVER_HOST", "127.0.0.1")
	t.Setenv("RERX_SERVER_PORT", strconv.Itoa(port))
	t.Setenv("RERX_STORE_BACKEND", storeCfg.Backend)
	t.Setenv("RERX_DB_PATH", storeCfg.DBPath)
	t.Setenv("RERX_BADGER_PATH", storeCfg.BadgerPath)
	t.Setenv("RERX_LOG_LEVEL", "error")

	err = run()
	require.ErrorContains(t, err, "server error")

	// badger locks its directory until closed
	a, err := app.Open(context.Background(), storeCfg, nil)
	require.NoError(t, err)
	require.NoError(t, a.Close())
}

func TestRun_ConfigError(t *testing.T) {
	t.Setenv("RERX_CONFIG_PATH", "")
	t.Setenv("RERX_STORE_BACKEND", "postgres")
	require.ErrorContains(t, run(), "config error")
}
