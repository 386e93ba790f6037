package pex

import (
	"bvnet/db"
	"bvnet/p2p"

	"fmt"
	"time"
	"halftwo/mangos/vbs"
	"halftwo/mangos/xerr"
)

var _ADDRBOOK_KEY = []byte("addrbook")

// _BookSnapshot is the persisted form of the book: the placement key
// plus one record per known address, timestamps as unix seconds.
type _BookSnapshot struct {
	Key   string
	Addrs []_AddrRecord
}

type _AddrRecord struct {
	Addr        string
	Src         string
	Attempts    int32
	LastAttempt int64
	LastSuccess int64
	BucketType  byte
	Buckets     []int
}

func recordFromKnownAddress(ka *_KnownAddress) _AddrRecord {
	rec := _AddrRecord{
		Addr:        ka.Addr.String(),
		Src:         ka.Src.String(),
		Attempts:    ka.Attempts,
		LastAttempt: ka.LastAttempt.Unix(),
		BucketType:  ka.BucketType,
		Buckets:     ka.Buckets,
	}
	// keep the zero time distinguishable, isBad() depends on it
	if !ka.LastSuccess.IsZero() {
		rec.LastSuccess = ka.LastSuccess.Unix()
	}
	return rec
}

func (rec *_AddrRecord) toKnownAddress() (*_KnownAddress, error) {
	addr, err := p2p.NewNetAddressStringWithOptionalId(rec.Addr)
	if err != nil {
		return nil, err
	}
	src, err := p2p.NewNetAddressStringWithOptionalId(rec.Src)
	if err != nil {
		return nil, err
	}

	if len(rec.Buckets) == 0 {
		return nil, fmt.Errorf("Address is in no bucket")
	}

	switch rec.BucketType {
	case _NEW_BUCKET:
		for _, idx := range rec.Buckets {
			if idx < 0 || idx >= _NEW_BUCKET_COUNT {
				return nil, fmt.Errorf("Bucket index %d out of range", idx)
			}
		}
	case _OLD_BUCKET:
		for _, idx := range rec.Buckets {
			if idx < 0 || idx >= _OLD_BUCKET_COUNT {
				return nil, fmt.Errorf("Bucket index %d out of range", idx)
			}
		}
	default:
		return nil, fmt.Errorf("Unknown bucket type %#x", rec.BucketType)
	}

	ka := &_KnownAddress{
		Addr:        addr,
		Src:         src,
		Attempts:    rec.Attempts,
		LastAttempt: time.Unix(rec.LastAttempt, 0),
		BucketType:  rec.BucketType,
		Buckets:     rec.Buckets,
	}
	if rec.LastSuccess != 0 {
		ka.LastSuccess = time.Unix(rec.LastSuccess, 0)
	}
	return ka, nil
}

func (a *_AddrBook) saveToDb() {
	a.Logger.Info("Saving address book to db", "size", a.Size())

	a.mtx.Lock()
	defer a.mtx.Unlock()

	snap := &_BookSnapshot{Key: a.key}
	for _, ka := range a.addrLookup {
		snap.Addrs = append(snap.Addrs, recordFromKnownAddress(ka))
	}

	bz, err := vbs.Marshal(snap)
	if err != nil {
		a.Logger.Error("Failed to marshal address book", "err", err)
		return
	}
	if err := a.kvdb.Put(_ADDRBOOK_KEY, bz); err != nil {
		a.Logger.Error("Failed to save address book to db", "err", err)
	}
}

// loadFromDb restores the snapshot, if one exists. Unreadable
// entries are dropped one by one, a missing snapshot is not an
// error.
func (a *_AddrBook) loadFromDb() error {
	bz, err := a.kvdb.Get(_ADDRBOOK_KEY)
	if err != nil {
		if db.IsKeyNotFound(err) {
			return nil
		}
		return xerr.Trace(err, "Error reading address book from db")
	}

	var snap _BookSnapshot
	if err := vbs.Unmarshal(bz, &snap); err != nil {
		return xerr.Trace(err, "Error unmarshaling address book")
	}

	a.mtx.Lock()
	defer a.mtx.Unlock()

	a.key = snap.Key
	for i := range snap.Addrs {
		rec := &snap.Addrs[i]
		ka, err := rec.toKnownAddress()
		if err != nil {
			a.Logger.Error("Dropping unreadable address book entry", "addr", rec.Addr, "err", err)
			continue
		}
		for _, bucketIdx := range ka.Buckets {
			bucket := a.getBucket(ka.BucketType, bucketIdx)
			bucket[ka.Key()] = ka
		}
		a.addrLookup[ka.Key()] = ka
		if ka.BucketType == _NEW_BUCKET {
			a.nNew++
		} else {
			a.nOld++
		}
	}
	return nil
}
