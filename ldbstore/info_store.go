package ldbstore

import (
	"bytes"
	"encoding/gob"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/timpalpant/go-efr"
	"github.com/timpalpant/go-efr/internal/policy"
)

func init() {
	gob.Register(&InfoStore{})
}

// InfoStore is an efr.DecisionInfoStore that keeps every learner record
// on disk in a LevelDB database.
//
// It is functionally equivalent to an efr.MemoryInfoStore. In practice, it is
// significantly slower but will use a constant amount of memory since all
// records are kept on disk.
type InfoStore struct {
	path string
	opts *opt.Options
	n    int

	db    *leveldb.DB
	rOpts *opt.ReadOptions
	wOpts *opt.WriteOptions
}

var _ efr.DecisionInfoStore = &InfoStore{}

// New creates a new InfoStore backed by a LevelDB database at the given path.
// Records already present in the database are kept.
func New(path string, opts *opt.Options) (*InfoStore, error) {
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb at %v", path)
	}

	s := &InfoStore{
		path: path,
		opts: opts,
		db:   db,
	}

	if err := s.count(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *InfoStore) count() error {
	iter := s.db.NewIterator(nil, s.rOpts)
	defer iter.Release()
	s.n = 0
	for iter.Next() {
		s.n++
	}

	return iter.Error()
}

// GobEncode implements gob.GobEncoder.
func (s *InfoStore) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(s.path); err != nil {
		return nil, err
	}

	if err := enc.Encode(s.opts); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder. The database must already exist.
func (s *InfoStore) GobDecode(buf []byte) error {
	r := bytes.NewReader(buf)
	dec := gob.NewDecoder(r)

	if err := dec.Decode(&s.path); err != nil {
		return err
	}

	if err := dec.Decode(&s.opts); err != nil {
		return err
	}

	if s.opts == nil {
		s.opts = &opt.Options{}
	}
	s.opts.ErrorIfMissing = true
	db, err := leveldb.OpenFile(s.path, s.opts)
	if err != nil {
		return err
	}

	s.db = db
	return s.count()
}

// Close implements io.Closer.
func (s *InfoStore) Close() error {
	return s.db.Close()
}

// Get implements efr.DecisionInfoStore. The returned record is a copy.
func (s *InfoStore) Get(infoState string) (*policy.Info, bool) {
	buf, err := s.db.Get([]byte(infoState), s.rOpts)
	if err == leveldb.ErrNotFound {
		return nil, false
	} else if err != nil {
		panic(err)
	}

	info := &policy.Info{}
	if err := info.GobDecode(buf); err != nil {
		panic(err)
	}

	return info, true
}

// Put implements efr.DecisionInfoStore.
func (s *InfoStore) Put(infoState string, info *policy.Info) {
	key := []byte(infoState)
	exists, err := s.db.Has(key, s.rOpts)
	if err != nil {
		panic(err)
	}

	buf, err := info.GobEncode()
	if err != nil {
		panic(err)
	}

	if err := s.db.Put(key, buf, s.wOpts); err != nil {
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
	iter := s.db.NewIterator(nil, s.rOpts)
	defer iter.Release()

	n := 0
	for iter.Next() {
		n++
		info := &policy.Info{}
		if err := info.GobDecode(iter.Value()); err != nil {
			panic(err)
		}

		if !f(string(iter.Key()), info) {
			break
		}
	}

	if err := iter.Error(); err != nil {
		panic(err)
	}

	glog.V(1).Infof("Visited %d records", n)
}
