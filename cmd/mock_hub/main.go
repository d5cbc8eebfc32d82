package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go_mock_hub/utils"

	"github.com/go-chassis/go-chassis/v2"
)

func main() {
	logger := utils.GetLogger()

	hub, err := InitializeHub()
	if err != nil {
		logger.Fatalf("failed to initialize: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// mock 流量与实时通道走独立监听，管理接口走 chassis
	serverCfg := hub.Config.ServerConfig
	mockServer := &http.Server{
		Addr:         serverCfg.MockListenAddr,
		Handler:      hub.MockHandler.Router(serverCfg.WSPath, hub.WSHandler),
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
	}
	go func() {
		logger.Infof("mock server listening on %s", serverCfg.MockListenAddr)
		if err := mockServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("mock server err: %v", err)
		}
	}()

	go hub.Reaper.Run(ctx)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
		_ = mockServer.Shutdown(context.Background())
	}()

	chassis.RegisterSchema("rest", hub.AdminController)
	if err := chassis.Init(); err != nil {
		logger.Fatalf("chassis init failed: %v", err)
	}
	if err := chassis.Run(); err != nil {
		logger.Fatalf("chassis run failed: %v", err)
	}
}
