package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"

	"github.com/quackd/quack/broker"
	"github.com/quackd/quack/internal/config"
	"github.com/quackd/quack/internal/filestore"
	"github.com/quackd/quack/provider"
	tokenfilerepo "github.com/quackd/quack/redirecttokens/filerepo"
	tokenredisrepo "github.com/quackd/quack/redirecttokens/redisrepo"
	"github.com/quackd/quack/server"
	sessionfilerepo "github.com/quackd/quack/sessions/filerepo"
	sessionredisrepo "github.com/quackd/quack/sessions/redisrepo"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, err := buildRepos(c)
	if err != nil {
		return fmt.Errorf("buildRepos: %w", err)
	}

	redirectURL := strings.TrimSuffix(c.GetBaseURL(), "/") + server.RouteCallback
	prov, err := provider.New(ctx, c, redirectURL)
	if err != nil {
		return fmt.Errorf("provider.New: %w", err)
	}

	srv := server.New(c, repos, prov)
	srv.StartSweeper(ctx)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildRepos(c config.Config) (broker.Repos, error) {
	switch c.GetStorageBackend() {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		return broker.Repos{
			Sessions:       sessionredisrepo.New(client, c.GetSessionRetention()),
			RedirectTokens: tokenredisrepo.New(client, c.GetRedirectTokenTTL()),
		}, nil
	default:
		store, err := filestore.New(c.GetDataFolder())
		if err != nil {
			return broker.Repos{}, err
		}
		return broker.Repos{
			Sessions:       sessionfilerepo.New(store),
			RedirectTokens: tokenfilerepo.New(store),
		}, nil
	}
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
