package main

import (
	"flag"
	"fmt"
	"strings"

	"economic/client"
	"economic/config"
	"economic/dashboard"
	"economic/logging"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	configFile  string
	port        string
	apiURL      string
	showVersion bool
)

const version = "1.0.0"

func init() {
	flag.StringVar(&configFile, "config", "", "external config file (optional)")
	flag.StringVar(&configFile, "c", "", "external config file (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 3000 or :3000")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.StringVar(&apiURL, "api", "", "REST backend base URL")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&showVersion, "v", false, "print version (shorthand)")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("economic dashboard v" + version)
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
		cfg.Dashboard.Port = port
	}
	if apiURL != "" {
		cfg.Dashboard.APIBaseURL = apiURL
	}
	gin.SetMode(cfg.Server.Mode)

	config.PrintConfig()

	api := client.New(cfg.Dashboard.APIBaseURL, nil)
	d := dashboard.New(cfg.Dashboard, api, dashboard.WithSecureCookies(config.IsRelease()))
	if err := d.Run(); err != nil {
		log.Fatalf("dashboard stopped: %v", err)
	}
}
