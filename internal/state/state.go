// Copyright 2023 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/blinklabs-io/powtarget/chain"
	"github.com/blinklabs-io/powtarget/internal/config"
	"github.com/blinklabs-io/powtarget/internal/logging"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

const (
	chainTipKey    = "chain_tip"
	blockKeyPrefix = "block_"
)

type State struct {
	db *badger.DB
}

var globalState = &State{}

// blockRecord is the stored form of a block, keyed by height
type blockRecord struct {
	Timestamp int64
	Bits      uint32
	Hash      [32]byte
}

func (s *State) Load() error {
	cfg := config.GetConfig()
	return s.Open(cfg.State.Directory, false)
}

// Open opens the database in dir, or an in-memory database when inMemory
// is set
func (s *State) Open(dir string, inMemory bool) error {
	badgerOpts := badger.DefaultOptions(dir).
		WithLogger(NewBadgerLogger()).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	if inMemory {
		badgerOpts = badgerOpts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	db, err := badger.Open(badgerOpts)
	// TODO: setup automatic GC for Badger
	if err != nil {
		return errors.Wrap(err, "open state database")
	}
	s.db = db
	return nil
}

func (s *State) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func blockKey(height int64) []byte {
	return fmt.Appendf(nil, "%s%016x", blockKeyPrefix, height)
}

// PutBlock stores block as the new chain tip. The block must sit directly
// above the current tip.
func (s *State) PutBlock(block *chain.BlockMetadata) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		tip, err := getTip(txn)
		if err != nil {
			return err
		}
		if block.Height != tip+1 {
			return fmt.Errorf(
				"%w: got height %d, expected %d",
				chain.ErrNonContiguousHeight,
				block.Height,
				tip+1,
			)
		}
		var buf bytes.Buffer
		record := blockRecord{
			Timestamp: block.Timestamp,
			Bits:      block.Bits,
			Hash:      block.Hash,
		}
		if err := binary.Write(&buf, binary.LittleEndian, &record); err != nil {
			return err
		}
		if err := txn.Set(blockKey(block.Height), buf.Bytes()); err != nil {
			return err
		}
		tipVal := binary.LittleEndian.AppendUint64(nil, uint64(block.Height))
		if err := txn.Set([]byte(chainTipKey), tipVal); err != nil {
			return err
		}
		return nil
	})
	return errors.Wrapf(err, "store block at height %d", block.Height)
}

// GetBlock returns the block at height, or nil if none is stored
func (s *State) GetBlock(height int64) (*chain.BlockMetadata, error) {
	var ret *chain.BlockMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(height))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			block, err := decodeBlock(height, v)
			if err != nil {
				return err
			}
			ret = block
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load block at height %d", height)
	}
	return ret, nil
}

// Tip returns the height of the highest stored block, or -1 when the
// store is empty
func (s *State) Tip() (int64, error) {
	var tip int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		tip, err = getTip(txn)
		return err
	})
	return tip, err
}

func getTip(txn *badger.Txn) (int64, error) {
	item, err := txn.Get([]byte(chainTipKey))
	if err == badger.ErrKeyNotFound {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	var tip int64
	err = item.Value(func(v []byte) error {
		if len(v) != 8 {
			return fmt.Errorf("invalid chain tip record length %d", len(v))
		}
		tip = int64(binary.LittleEndian.Uint64(v))
		return nil
	})
	return tip, err
}

// LoadIndex appends every stored block to idx in height order and
// returns the number of blocks loaded
func (s *State) LoadIndex(idx *chain.Index) (int, error) {
	var count int
	keyPrefix := []byte(blockKeyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			item := it.Item()
			var height int64
			_, err := fmt.Sscanf(
				string(item.Key()[len(keyPrefix):]),
				"%016x",
				&height,
			)
			if err != nil {
				return errors.Wrapf(err, "parse block key %q", item.Key())
			}
			err = item.Value(func(v []byte) error {
				block, err := decodeBlock(height, v)
				if err != nil {
					return err
				}
				if _, err := idx.Append(*block); err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return count, errors.Wrap(err, "load chain index")
	}
	return count, nil
}

func decodeBlock(height int64, v []byte) (*chain.BlockMetadata, error) {
	var record blockRecord
	if err := binary.Read(bytes.NewReader(v), binary.LittleEndian, &record); err != nil {
		return nil, fmt.Errorf("decode block at height %d: %w", height, err)
	}
	return &chain.BlockMetadata{
		Height: height,
		Header: chain.Header{
			Timestamp: record.Timestamp,
			Bits:      record.Bits,
			Hash:      record.Hash,
		},
	}, nil
}

func GetState() *State {
	return globalState
}

// BadgerLogger is a wrapper type to give our logger the expected interface
type BadgerLogger struct {
	*logging.Logger
}

func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{
		Logger: logging.GetComponentLogger("badger"),
	}
}

func (b *BadgerLogger) Warningf(msg string, args ...any) {
	b.Logger.Warnf(msg, args...)
}
