package ec

import (
	"bvnet/util"

	"strconv"
	"fmt"
	"bytes"
	"halftwo/mangos/xstr"
	secp256k1 "github.com/btcsuite/btcd/btcec"
)

const PrivKeyPrefix = "BvK"

type PrivKey [32]byte

func NewPrivKey() (k PrivKey) {
	priv, err := secp256k1.NewPrivateKey(secp256k1.S256())
	if err != nil {
		panic(err)
	}
	copy(k[:], priv.Serialize())
	return
}

func BytesToPrivKey(key []byte) (k PrivKey) {
	if len(key) < 32 {
		panic("length of key too short")
	}
	copy(k[:], key)
	return
}

func (k *PrivKey) IsZero() bool {
	return xstr.IndexNotByte(k[:], 0) == -1
}

func (k *PrivKey) PubKey() (p PubKey) {
        _, pub := secp256k1.PrivKeyFromBytes(secp256k1.S256(), k[:])
        copy(p[:], pub.SerializeCompressed())
	return
}

func (k *PrivKey) Equal(k2 PrivKey) bool {
	return bytes.Equal(k[:], k2[:])
}

func (k PrivKey) String() string {
	return util.BytesToBase32Sum(k[:], PrivKeyPrefix, 4, true)
}

func StringToPrivKey(s string) (k PrivKey, err error) {
	b, err := util.Base32SumToBytes(s, PrivKeyPrefix, 4, true)
	if err != nil {
		return
	}

	if len(b) != len(k) {
		err = fmt.Errorf("invalid PrivKey string")
		return
	}

	copy(k[:], b)
	return
}

func (k *PrivKey) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(k.String())), nil
}

func (k *PrivKey) UnmarshalJSON(bz []byte) error {
	if len(bz) < 2 || bz[0] != '"' || bz[len(bz)-1] != '"' {
		return fmt.Errorf("Invalid PrivKey string");
	}

	key, err := StringToPrivKey(string(bz[1:len(bz)-1]))
	if err != nil {
		return err
	}

	*k = key
	return nil
}
