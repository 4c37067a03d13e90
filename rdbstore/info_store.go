package rdbstore

import (
	"bytes"
	"encoding/gob"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	rocksdb "github.com/tecbot/gorocksdb"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/internal/policy"
)

func init() {
	gob.Register(&InfoStore{})
}

// InfoStore is an efr.DecisionInfoStore that keeps every learner record
// in a RocksDB database.
type InfoStore struct {
	params Params
	db     *rocksdb.DB
	n      int
}

var _ efr.DecisionInfoStore = &InfoStore{}

// New opens the RocksDB database described by params. Records already
// present in the database are kept.
func New(params Params) (*InfoStore, error) {
	db, err := rocksdb.OpenDb(params.Options, params.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open rocksdb at %v", params.Path)
	}

	s := &InfoStore{params: params, db: db}
	if err := s.count(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *InfoStore) count() error {
	it := s.db.NewIterator(s.params.ReadOptions)
	defer it.Close()

	s.n = 0
	for it.SeekToFirst(); it.Valid(); it.Next() {
		s.n++
	}

	return it.Err()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *InfoStore) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(s.params.Path); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The database is
// reopened with DefaultParams and must already exist.
func (s *InfoStore) UnmarshalBinary(buf []byte) error {
	r := bytes.NewReader(buf)
	dec := gob.NewDecoder(r)

	var path string
	if err := dec.Decode(&path); err != nil {
		return err
	}

	// TODO: Serialize and reload RocksDB options.
	s.params = DefaultParams(path)
	s.params.Options.SetCreateIfMissing(false)
	db, err := rocksdb.OpenDb(s.params.Options, s.params.Path)
	if err != nil {
		return err
	}

	s.db = db
	return s.count()
}

// Close implements io.Closer.
func (s *InfoStore) Close() error {
	s.db.Close()
	return nil
}

// Get implements efr.DecisionInfoStore. The returned record is a copy.
func (s *InfoStore) Get(infoState string) (*policy.Info, bool) {
	result, err := s.db.Get(s.params.ReadOptions, []byte(infoState))
	if err != nil {
		panic(err)
	}
	defer result.Free()

	if !result.Exists() {
		return nil, false
	}

	info := &policy.Info{}
	if err := info.GobDecode(result.Data()); err != nil {
		panic(err)
	}

	return info, true
}

// Put implements efr.DecisionInfoStore.
func (s *InfoStore) Put(infoState string, info *policy.Info) {
	key := []byte(infoState)
	existing, err := s.db.Get(s.params.ReadOptions, key)
	if err != nil {
		panic(err)
	}
	exists := existing.Exists()
	existing.Free()

	buf, err := info.GobEncode()
	if err != nil {
		panic(err)
	}

	if err := s.db.Put(s.params.WriteOptions, key, buf); err != nil {
		panic(err)
	}

	if !exists {
		s.n++
		glog.V(2).Infof("Stored new record for %v", infoState)
	}
}

// Len implements efr.DecisionInfoStore.
func (s *InfoStore) Len() int {
	return s.n
}

// Range implements efr.DecisionInfoStore.
func (s *InfoStore) Range(f func(infoState string, info *policy.Info) bool) {
	it := s.db.NewIterator(s.params.ReadOptions)
	defer it.Close()

	n := 0
	for it.SeekToFirst(); it.Valid(); it.Next() {
		key := it.Key()
		value := it.Value()
		n++

		info := &policy.Info{}
		err := info.GobDecode(value.Data())
		infoState := string(key.Data())
		key.Free()
		value.Free()
		if err != nil {
			panic(err)
		}

		if !f(infoState, info) {
			break
		}
	}

	if err := it.Err(); err != nil {
		panic(err)
	}

	glog.V(1).Infof("Visited %d records", n)
}
