package stubserver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// The stub records votes in a hash-chained ledger mirroring the reference
// backend: every confirmed vote lives in a mined block, and tallies are
// computed by scanning the chain.

type transaction struct {
	VoterID   string `json:"voter_id"`
	PollID    string `json:"poll_id"`
	Selection string `json:"selection"`
	Timestamp string `json:"timestamp"`
}

type block struct {
	Index        int           `json:"index"`
	Timestamp    string        `json:"timestamp"`
	Transactions []transaction `json:"transactions"`
	Proof        int           `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
}

type ledger struct {
	chain   []block
	pending []transaction
}

func newLedger() *ledger {
	l := &ledger{}
	l.appendBlock(100, "1")
	return l
}

func (l *ledger) appendBlock(proof int, previousHash string) block {
	if previousHash == "" {
		previousHash = hashBlock(l.chain[len(l.chain)-1])
	}
	b := block{
		Index:        len(l.chain) + 1,
		Timestamp:    time.Now().Format(time.RFC3339Nano),
		Transactions: l.pending,
		Proof:        proof,
		PreviousHash: previousHash,
	}
	l.pending = nil
	l.chain = append(l.chain, b)
	return b
}

func (l *ledger) addTransaction(tx transaction) {
	tx.Timestamp = time.Now().Format(time.RFC3339Nano)
	l.pending = append(l.pending, tx)
}

// mine runs proof-of-work over the last block and confirms the pending
// transactions in a new one.
func (l *ledger) mine() block {
	last := l.chain[len(l.chain)-1]
	proof := proofOfWork(last.Proof)
	return l.appendBlock(proof, hashBlock(last))
}

func (l *ledger) hasVoted(pollID, voterID string) bool {
	for _, b := range l.chain {
		for _, tx := range b.Transactions {
			if tx.PollID == pollID && tx.VoterID == voterID {
				return true
			}
		}
	}
	return false
}

// tally counts confirmed votes for one poll. Selections outside the known
// option set are ignored.
func (l *ledger) tally(pollID string, options []string) (map[string]int, int) {
	results := make(map[string]int, len(options))
	for _, opt := range options {
		results[opt] = 0
	}
	total := 0
	for _, b := range l.chain {
		for _, tx := range b.Transactions {
			if tx.PollID != pollID {
				continue
			}
			if _, ok := results[tx.Selection]; ok {
				results[tx.Selection]++
				total++
			}
		}
	}
	return results, total
}

func hashBlock(b block) string {
	data, err := json.Marshal(b)
	if err != nil {
		panic(fmt.Sprintf("block not serializable: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func proofOfWork(lastProof int) int {
	proof := 0
	for !validProof(lastProof, proof) {
		proof++
	}
	return proof
}

func validProof(lastProof, proof int) bool {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d%d", lastProof, proof)))
	return strings.HasPrefix(hex.EncodeToString(sum[:]), "0000")
}
