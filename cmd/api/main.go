package main

import (
	"context"
	"time"

	"github.com/amoslue/what-the-food/internal/config"
	"github.com/amoslue/what-the-food/internal/imagegen"
	logx "github.com/amoslue/what-the-food/internal/logger"
	"github.com/amoslue/what-the-food/internal/nlu"
	"github.com/amoslue/what-the-food/internal/ocr"
	"github.com/amoslue/what-the-food/internal/pipeline"
	"github.com/amoslue/what-the-food/internal/router"

	"github.com/gin-gonic/gin"
)

func main() {

	// ───────────────────────── CONFIG ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("invalid configuration")
	}

	logx.Init(cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ───────────────────────── STAGE CLIENTS ─────────────────────────
	ocrClient := ocr.NewClient(cfg.OCRBaseURL, cfg.UpstreamTimeout)
	nluClient := nlu.NewClient(cfg.NLUBaseURL, cfg.UpstreamTimeout)

	// Image generation is optional. Without a configured service the
	// pipeline serves placeholders only.
	var generator imagegen.Generator = imagegen.Stub{}
	if cfg.ImageGenBaseURL != "" {
		genClient := imagegen.NewClient(cfg.ImageGenBaseURL, cfg.UpstreamTimeout)

		probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if !genClient.Healthy(probeCtx) {
			logx.Warn().Str("url", cfg.ImageGenBaseURL).Msg("image service not ready, images may lag behind")
		}
		cancel()

		generator = genClient
	}

	// ───────────────────────── PIPELINE ─────────────────────────
	service := pipeline.NewService(ocrClient, nluClient, generator, cfg.ImageGenWorkers)

	// ───────────────────────── ROUTER ─────────────────────────
	r := router.New(service, cfg.AllowedOrigins)

	logx.Info().
		Str("addr", cfg.ListenAddr).
		Str("ocr", cfg.OCRBaseURL).
		Str("nlu", cfg.NLUBaseURL).
		Msg("🚀 gateway running")

	if err := r.Run(cfg.ListenAddr); err != nil {
		logx.Fatal().Err(err).Msg("server stopped")
	}
}
