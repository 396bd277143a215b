// Command routerd is the minimal binary that wires a RouterContext to a
// UDP socket and runs it until interrupted, in the style of the teacher's
// own cmd/ entrypoint.
package main

import (
	"flag"
	"net"

	"github.com/go-i2p/common/router_identity"
	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-i2p/lib/config"
	"github.com/go-i2p/go-i2p/lib/context"
	"github.com/go-i2p/go-i2p/lib/routerdb"
	"github.com/go-i2p/go-i2p/lib/util/signals"
)

var log = logger.GetGoI2PLogger()

func main() {
	dataDir := flag.String("dataDir", config.SSUConfigProperties.DataDir, "Path to the router data directory")
	listenAddr := flag.String("listen", config.SSUConfigProperties.ListenAddress, "UDP listen address")
	port := flag.Uint("port", uint(config.SSUConfigProperties.Port), "UDP listen port")
	flag.Parse()
	config.SSUConfigProperties.DataDir = *dataDir
	config.SSUConfigProperties.ListenAddress = *listenAddr
	config.SSUConfigProperties.Port = uint16(*port)

	go signals.Handle()

	db, err := routerdb.NewFileDatabase(config.SSUConfigProperties.DataDir)
	if err != nil {
		log.WithError(err).Fatal("failed to open router database")
	}

	identity, err := loadIdentity(db)
	if err != nil {
		log.WithError(err).Fatal("failed to load local router identity")
	}

	ourIP := net.ParseIP(config.SSUConfigProperties.ListenAddress)
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: ourIP, Port: int(config.SSUConfigProperties.Port)})
	if err != nil {
		log.WithError(err).Fatal("failed to bind UDP socket")
	}

	rc, err := context.New(db, identity, conn, ourIP, config.SSUConfigProperties.Port)
	if err != nil {
		log.WithError(err).Fatal("failed to construct router context")
	}

	stop := make(chan struct{})
	signals.RegisterInterruptHandler(func() {
		close(stop)
	})
	signals.RegisterReloadHandler(func() {
		log.Debug("reload signal received, router configuration is immutable at runtime")
	})

	log.WithFields(logger.Fields{"at": "main", "hash": rc.Hash}).Info("router starting")
	rc.Run(stop)
	if err := rc.Close(); err != nil {
		log.WithError(err).Warn("error closing router context")
	}
}

func loadIdentity(db routerdb.Database) (*router_identity.RouterIdentity, error) {
	raw, err := db.GetConfigValue(routerdb.KeyLocalRouterIdentity)
	if err != nil {
		return nil, err
	}
	identity, _, err := router_identity.ReadRouterIdentity(raw)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}
