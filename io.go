package efr

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-efr/internal/policy"
)

// LoadMapPolicy reads a policy written by MapPolicy.MarshalTo.
func LoadMapPolicy(r io.Reader) (*MapPolicy, error) {
	dec := gob.NewDecoder(r)
	var n int64
	if err := dec.Decode(&n); err != nil {
		return nil, err
	}

	table := make(map[string][]float64, n)
	for i := int64(0); i < n; i++ {
		var key string
		if err := dec.Decode(&key); err != nil {
			return nil, err
		}

		var weights []float64
		if err := dec.Decode(&weights); err != nil {
			return nil, err
		}

		table[key] = weights
	}

	return NewMapPolicyFromTable(table), nil
}

func (mp *MapPolicy) MarshalTo(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(int64(len(mp.table))); err != nil {
		return err
	}

	for key, weights := range mp.table {
		if err := enc.Encode(key); err != nil {
			return err
		}

		if err := enc.Encode(weights); err != nil {
			return err
		}
	}

	return nil
}

// SaveMapPolicy writes mp to a gzip-compressed file.
func SaveMapPolicy(mp *MapPolicy, filename string) error {
	glog.Infof("Saving policy to: %v", filename)
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "create policy file")
	}
	defer f.Close()

	w := gzip.NewWriter(f)
	if err := mp.MarshalTo(w); err != nil {
		return errors.Wrapf(err, "encode policy to %v", filename)
	}

	if err := w.Close(); err != nil {
		return errors.Wrap(err, "flush policy file")
	}

	return f.Close()
}

// LoadMapPolicyFile reads a policy written by SaveMapPolicy.
func LoadMapPolicyFile(filename string) (*MapPolicy, error) {
	glog.Infof("Loading policy from: %v", filename)
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open policy file")
	}
	defer f.Close()

	r, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress %v", filename)
	}
	defer r.Close()

	mp, err := LoadMapPolicy(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode policy from %v", filename)
	}

	return mp, nil
}

func familyName(family DeviationFamily) string {
	if s, ok := family.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}

// MarshalTo writes the learner's deviation family and every record. The
// regret update rule and link function are not saved.
func (l *TabularLearner) MarshalTo(w io.Writer) error {
	name := familyName(l.family)
	if _, err := DeviationFamilyByName(name); err != nil {
		return errors.Wrap(err, "only registered deviation families can be saved")
	}

	enc := gob.NewEncoder(w)
	if err := enc.Encode(name); err != nil {
		return err
	}

	if err := enc.Encode(int64(l.infos.Len())); err != nil {
		return err
	}

	var err error
	l.infos.Range(func(infoState string, info *policy.Info) bool {
		if err = enc.Encode(infoState); err != nil {
			return false
		}

		err = enc.Encode(info)
		return err == nil
	})

	return err
}

// LoadTabularLearner reads a learner written by TabularLearner.MarshalTo.
// Records are added to the store given by opts, in memory by default.
func LoadTabularLearner(r io.Reader, opts ...LearnerOption) (*TabularLearner, error) {
	dec := gob.NewDecoder(r)
	var name string
	if err := dec.Decode(&name); err != nil {
		return nil, err
	}

	family, err := DeviationFamilyByName(name)
	if err != nil {
		return nil, err
	}

	var n int64
	if err := dec.Decode(&n); err != nil {
		return nil, err
	}

	l := NewTabularLearner(family, opts...)
	for i := int64(0); i < n; i++ {
		var infoState string
		if err := dec.Decode(&infoState); err != nil {
			return nil, err
		}

		info := &policy.Info{}
		if err := dec.Decode(info); err != nil {
			return nil, err
		}

		l.infos.Put(infoState, info)
	}

	return l, nil
}
