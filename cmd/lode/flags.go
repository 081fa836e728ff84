// Copyright (c) 2026 The Lodestake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger and event databases",
	}
	memFlag = cli.BoolFlag{
		Name:  "mem",
		Usage: "keep databases in memory, nothing persists across restarts",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8668",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of events returned by the /events API",
	}
	apiCacheSizeFlag = cli.UintFlag{
		Name:  "api-cache-size",
		Value: 256,
		Usage: "message cache size for the subscriptions API",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables the local admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "emit logs in JSON format",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	ownerFlag = cli.StringFlag{
		Name:  "owner",
		Value: "0x0000000000000000000000000000000000000001",
		Usage: "address holding the administrative capability",
	}
	treasuryFlag = cli.StringFlag{
		Name:  "treasury",
		Value: "0x0000000000000000000000000000000000000002",
		Usage: "address receiving early-withdrawal penalties",
	}
	vaultFlag = cli.StringFlag{
		Name:  "vault",
		Value: "0x0000000000000000000000000000000000000003",
		Usage: "custody account at the token gateway",
	}
	annualRateFlag = cli.Uint64Flag{
		Name:  "annual-rate",
		Value: 0,
		Usage: "reward rate per year in 1/10000 units, 0 selects the default",
	}
	penaltyFlag = cli.BoolTFlag{
		Name:  "penalty",
		Usage: "apply the early-withdrawal penalty schedule",
	}
	rewardFloatFlag = cli.StringFlag{
		Name:  "reward-float",
		Value: "1000000000000000000000000",
		Usage: "token amount minted to the vault to pay rewards from",
	}
)
