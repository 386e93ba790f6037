package util


func IsZeros(bz []byte) bool {
	for _, b := range bz {
		if b != byte(0) {
			return false
		}
	}
	return true
}

func CloneBytes(bz []byte) []byte {
	bz2 := make([]byte, len(bz))
	copy(bz2, bz)
	return bz2
}
