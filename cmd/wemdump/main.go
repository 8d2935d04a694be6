package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/nergy-se/wemportal/pkg/client"
	"github.com/nergy-se/wemportal/pkg/model"
	"github.com/nergy-se/wemportal/pkg/portal"
	"github.com/sirupsen/logrus"
)

var server = flag.String("server", client.DefaultServer, "portal address for the app api")
var webServer = flag.String("web-server", "", "portal address for the web statistics, defaults to -server")
var username = flag.String("username", os.Getenv("WEMPORTAL_USERNAME"), "")
var password = flag.String("password", os.Getenv("WEMPORTAL_PASSWORD"), "")
var format = flag.String("format", "table", "table, csv or json")
var granularity = flag.String("granularity", "daily", "statistic granularity: daily, monthly or yearly")
var concurrency = flag.Int("concurrency", 1, "statistic requests in flight")
var verbose = flag.Bool("v", false, "debug logging")

func main() {
	flag.Parse()
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if *username == "" || *password == "" {
		return errors.New("-username and -password are required")
	}
	graphType, err := model.ParseGraphType(*granularity)
	if err != nil {
		return err
	}
	write, err := writerFor(*format)
	if err != nil {
		return err
	}

	web := *webServer
	if web == "" {
		web = *server
	}
	p := portal.New(
		client.NewAPIClient(*server, *username, *password),
		client.NewWebClient(web, *username, *password),
		portal.Options{Granularity: graphType, Concurrency: *concurrency},
	)
	defer func() {
		if err := p.Close(context.Background()); err != nil {
			logrus.Error(err)
		}
	}()

	snapshot, err := p.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, e := range snapshot.StatisticErrors {
		logrus.Warn(e)
	}
	return write(os.Stdout, snapshot.Devices)
}
