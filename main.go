package main

import (
	"flag"
	"fmt"
	"strings"

	"economic/config"
	"economic/database"
	"economic/logging"
	"economic/middleware"
	"economic/router"

	"github.com/joho/godotenv"
)

// @title Economic API
// @version 1.0
// @description Personal finance backend: accounts, income and expense records, categories and a chat assistant.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

const version = "1.0.0"

func init() {
	flag.StringVar(&configFile, "config", "", "external config file (optional)")
	flag.StringVar(&configFile, "c", "", "external config file (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 8080 or :8080")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&showVersion, "v", false, "print version (shorthand)")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("economic api v" + version)
		return
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logging.Get().Fatalf("load config: %v", err)
	}
	log := logging.Init(cfg.Log.Level, cfg.Log.Format)

	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Infof("port from command line: %s", port)
	}

	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		log.Fatalf("init database: %v", err)
	}

	middleware.InitJWT(cfg)

	r := router.SetupRouter(cfg)

	log.Infof("economic api listening on http://localhost%s", cfg.Server.Port)
	log.Infof("swagger: http://localhost%s/swagger/index.html", cfg.Server.Port)

	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
