// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/lodestake/lode/api"
	"github.com/lodestake/lode/co"
	"github.com/lodestake/lode/eventdb"
	"github.com/lodestake/lode/log"
	"github.com/lodestake/lode/metrics"
	"github.com/lodestake/lode/stake"
	"github.com/lodestake/lode/token"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Lode",
		Usage:     "Single-token staking vault daemon",
		Copyright: "2026 The Lodestake developers",
		Flags: []cli.Flag{
			dataDirFlag,
			memFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			apiCacheSizeFlag,
			enableAdminFlag,
			adminAddrFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			ownerFlag,
			treasuryFlag,
			vaultFlag,
			annualRateFlag,
			penaltyFlag,
			rewardFloatFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.Wrap(err, "start metrics server")
		}
		metricsURL = url
		defer closeFunc()
	}

	owner, err := parseAddressFlag(ctx, ownerFlag)
	if err != nil {
		return err
	}
	treasury, err := parseAddressFlag(ctx, treasuryFlag)
	if err != nil {
		return err
	}
	vault, err := parseAddressFlag(ctx, vaultFlag)
	if err != nil {
		return err
	}

	instanceDir := ":memory:"
	if !ctx.Bool(memFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx); err != nil {
			return err
		}
	}

	ledgerDB, err := openLedgerDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing ledger database..."); ledgerDB.Close() }()

	eventDB, err := eventdb.New(eventDBPath(ctx, instanceDir))
	if err != nil {
		return errors.Wrap(err, "open event database")
	}
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	float, ok := new(big.Int).SetString(ctx.String(rewardFloatFlag.Name), 10)
	if !ok {
		return errors.New("reward-float: malformed amount")
	}
	gateway := token.NewMem(vault)
	gateway.Mint(vault, float)

	staker, err := stake.New(gateway, ledgerDB, stake.Config{
		Owner:          owner,
		Treasury:       treasury,
		Vault:          vault,
		AnnualRate:     ctx.Uint64(annualRateFlag.Name),
		PenaltyEnabled: ctx.BoolT(penaltyFlag.Name),
	})
	if err != nil {
		return errors.Wrap(err, "initialize vault")
	}

	// continue event numbering after the stored history, otherwise events
	// of this lifetime collide with persisted sequence numbers
	newestSeq, err := eventDB.NewestSeq()
	if err != nil {
		return errors.Wrap(err, "read event history")
	}
	staker.SeedEventSeq(newestSeq)

	exitCtx := handleExitSignal()

	var goes co.Goes
	defer goes.Wait()

	// mirror committed events into the queryable history
	events, unsubscribe := staker.SubscribeEvents(256)
	defer unsubscribe()
	goes.Go(func() {
		for {
			select {
			case <-exitCtx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := eventDB.Insert(uint64(time.Now().Unix()), ev); err != nil {
					logger.Warn("failed to record event", "seq", ev.Seq, "err", err)
				}
			}
		}
	})

	goes.Go(func() {
		checkClockOffset()
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-exitCtx.Done():
				return
			case <-ticker.C:
				checkClockOffset()
			}
		}
	})

	apiHandler, apiCloser := api.New(staker, eventDB, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		LogsLimit:      ctx.Uint64(apiLogsLimitFlag.Name),
		CacheSize:      uint32(ctx.Uint(apiCacheSizeFlag.Name)),
		PprofOn:        ctx.Bool(pprofFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	})
	defer apiCloser()

	apiURL, srvCloser, err := startAPIServer(ctx.String(apiAddrFlag.Name), apiHandler)
	if err != nil {
		return errors.Wrap(err, "start API server")
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := api.NewAdmin(ctx.String(adminAddrFlag.Name), staker, logLevel).Start()
		if err != nil {
			return errors.Wrap(err, "start admin server")
		}
		adminURL = url
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
	}

	printStartupMessage(instanceDir, apiURL, adminURL, metricsURL)

	<-exitCtx.Done()
	return nil
}
