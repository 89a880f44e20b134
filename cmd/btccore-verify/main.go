// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command btccore-verify parses a serialized block from a file, runs the
// structural/Merkle/sigop/coinbase/witness-commitment verifier over it, and
// prints the resulting verdict. A goleveldb-backed cache avoids re-running
// verification for a block hash it has already seen.
package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/davecgh/go-spew/spew"

	"github.com/coreforge/btccore/blockchain"
	"github.com/coreforge/btccore/store/verdictdb"
	"github.com/coreforge/btccore/wire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	initLogRotator(cfg.LogDir + "/" + defaultLogFilename)
	setLogLevels(cfg.LogLevel)

	raw, err := os.ReadFile(cfg.BlockFile)
	if err != nil {
		return fmt.Errorf("read block file: %w", err)
	}

	var block wire.MsgBlock
	if err := block.Deserialize(bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("deserialize block: %w", err)
	}

	blockHash := block.BlockHash()
	verifyLog.Infof("loaded block %s with %d transactions, total output %s",
		blockHash, len(block.Transactions), totalOutputValue(&block))
	verifyLog.Tracef("block contents: %s", spew.Sdump(block))

	var db *verdictdb.DB
	if !cfg.NoCache {
		db, err = verdictdb.Open(cfg.VerdictDb)
		if err != nil {
			return fmt.Errorf("open verdict cache: %w", err)
		}
		defer db.Close()

		if cached, ok, err := db.Get(blockHash); err == nil && ok {
			verifyLog.Infof("cache hit for %s: valid=%v", blockHash, cached.Valid)
			printVerdict(blockHash, cached.Valid, cached.ErrorCode)
			return nil
		}
	}

	verifyErr := verifyBlock(&block, cfg.Height)
	valid := verifyErr == nil
	code := blockchain.ErrorCode(0)
	if ruleErr, ok := verifyErr.(blockchain.RuleError); ok {
		code = ruleErr.ErrorCode
	}

	if db != nil {
		v := verdictdb.Verdict{Valid: valid, ErrorCode: code, Timestamp: time.Now()}
		if err := db.Put(blockHash, v); err != nil {
			verifyLog.Warnf("failed to cache verdict for %s: %v", blockHash, err)
		}
	}

	printVerdict(blockHash, valid, code)
	if !valid {
		return verifyErr
	}
	return nil
}

// verifyBlock runs the full header and transaction checklist over block at
// the given chain height; VerifyTransactions itself ends with the witness
// commitment check.
func verifyBlock(block *wire.MsgBlock, height int32) error {
	if err := blockchain.VerifyHeader(&block.Header, 0); err != nil {
		return err
	}
	return blockchain.VerifyTransactions(block, height, 0)
}

// totalOutputValue sums every output value across block's transactions and
// formats the result as a BTC amount for the log line.
func totalOutputValue(block *wire.MsgBlock) btcutil.Amount {
	var total btcutil.Amount
	for _, tx := range block.Transactions {
		for _, txOut := range tx.TxOut {
			total += btcutil.Amount(txOut.Value)
		}
	}
	return total
}

func printVerdict(hash interface{ String() string }, valid bool, code blockchain.ErrorCode) {
	if valid {
		fmt.Printf("%s: VALID\n", hash)
		return
	}
	fmt.Printf("%s: INVALID (%s)\n", hash, code)
}
