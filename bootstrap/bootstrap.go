package bootstrap

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulldump/box"

	"github.com/nvdnkpr/hr/api"
	"github.com/nvdnkpr/hr/configuration"
	"github.com/nvdnkpr/hr/service"
)

var VERSION = "dev"

// Bootstrap wires the feed service behind the HTTP API and returns start and
// stop functions. Start blocks until the server exits.
func Bootstrap(c configuration.Configuration) (start, stop func()) {

	s := service.NewService()

	b := api.Build(s, VERSION)
	b.WithInterceptors(
		api.AccessLog(log.New(os.Stdout, "ACCESS: ", log.Lshortfile)),
		api.PrettyErrorInterceptor,
		api.RecoverFromPanic,
	)

	server := &http.Server{
		Addr:    c.HttpAddr,
		Handler: box.Box2Http(b),
	}

	start = func() {
		ln, err := net.Listen("tcp", c.HttpAddr)
		if err != nil {
			log.Println("ERROR:", err.Error())
			os.Exit(-1)
		}
		log.Println("listening on", c.HttpAddr)

		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			sig := <-signalChan
			log.Println("signal received", sig.String())
			server.Shutdown(context.Background())
		}()

		err = server.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			log.Println(err.Error())
		}
	}

	stop = func() {
		server.Shutdown(context.Background())
	}

	return start, stop
}
