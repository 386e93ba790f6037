package ec

import (
	"bvnet/util"

	"strconv"
	"fmt"
	"bytes"
	"halftwo/mangos/xstr"
)

const PubKeyPrefix = "BvP"

type PubKey [33]byte

func (p *PubKey) IsZero() bool {
	return xstr.IndexNotByte(p[:], 0) == -1
}

func (p *PubKey) Equal(p2 PubKey) bool {
	return bytes.Equal(p[:], p2[:])
}

func (p PubKey) String() string {
	return util.BytesToBase32Sum(p[:], PubKeyPrefix, 4, true)
}

func StringToPubKey(s string) (p PubKey, err error) {
	b, err := util.Base32SumToBytes(s, PubKeyPrefix, 4, true)
	if err != nil {
		return
	}

	if len(b) != len(p) {
		err = fmt.Errorf("invalid PubKey string")
		return
	}

	copy(p[:], b)
	return
}

func (p *PubKey) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

func (p *PubKey) UnmarshalJSON(bz []byte) error {
	if len(bz) < 2 || bz[0] != '"' || bz[len(bz)-1] != '"' {
		return fmt.Errorf("Invalid PubKey string");
	}

	pkey, err := StringToPubKey(string(bz[1:len(bz)-1]))
	if err != nil {
		return err
	}

	*p = pkey
	return nil
}
