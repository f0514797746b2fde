// Команда env печатает итоговый конфиг сервиса (после .env и переменных окружения) без секретов.
// С флагом -usage выводит список всех переменных CALCULATOR_* со значениями по умолчанию.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/kelseyhightower/envconfig"

	"webcalc/internal/app"
)

func main() {
	usage := flag.Bool("usage", false, "print all supported environment variables")
	flag.Parse()

	if *usage {
		var cfg app.Config
		if err := envconfig.Usage(app.AppName, &cfg); err != nil {
			slog.Error("usage failed", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := app.LoadCfg()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg.Masked()); err != nil {
		slog.Error("encode failed", "error", err)
		os.Exit(1)
	}
}
