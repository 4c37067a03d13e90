// Package rdbstore keeps TabularLearner records in a RocksDB database
// instead of in memory.
//
// Every Get and Put goes through the database, which makes learning much
// slower than with the in-memory store but lets the record table outgrow
// RAM.
package rdbstore

import (
	rocksdb "github.com/tecbot/gorocksdb"
)

// Params locates the database of an InfoStore and carries the RocksDB
// options it is opened, read and written with. The options are owned by
// the caller and released by Close.
type Params struct {
	Path         string
	Options      *rocksdb.Options
	ReadOptions  *rocksdb.ReadOptions
	WriteOptions *rocksdb.WriteOptions
}

// DefaultParams returns RocksDB's default options for a database at path,
// creating the database if it does not exist yet.
func DefaultParams(path string) Params {
	opts := rocksdb.NewDefaultOptions()
	opts.SetCreateIfMissing(true)

	return Params{
		Path:         path,
		Options:      opts,
		ReadOptions:  rocksdb.NewDefaultReadOptions(),
		WriteOptions: rocksdb.NewDefaultWriteOptions(),
	}
}

// Close releases the options. It must not be called before every store
// opened with p is closed.
func (p Params) Close() {
	p.Options.Destroy()
	p.ReadOptions.Destroy()
	p.WriteOptions.Destroy()
}
