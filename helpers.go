package df

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// *********** Other ***********

// Has returns true if needle is in haystack.
func Has[C comparable](needle C, haystack []C) bool {
	return position(needle, haystack) >= 0
}

func position[C comparable](needle C, haystack []C) int {
	for ind, straw := range haystack {
		if needle == straw {
			return ind
		}
	}

	return -1
}

// RandomLetters generates a string of length "length" by randomly choosing from a-z
func RandomLetters(length int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"

	var (
		randN []int64
		e     error
	)
	if randN, e = randUnifInt(length, len(letters)); e != nil {
		panic(e)
	}

	name := ""
	for ind := 0; ind < length; ind++ {
		name += letters[randN[ind] : randN[ind]+1]
	}

	return name
}

// randUnifInt generates a slice whose elements are random U[0,upper) int64's
func randUnifInt(n, upper int) ([]int64, error) {
	const bytesPerInt = 8

	// generate random bytes
	b1 := make([]byte, bytesPerInt*n)
	if _, e := rand.Read(b1); e != nil {
		return nil, e
	}

	outInts := make([]int64, n)
	rdr := bytes.NewReader(b1)

	for ind := 0; ind < n; ind++ {
		r, e := rand.Int(rdr, big.NewInt(int64(upper)))
		if e != nil {
			return nil, e
		}
		outInts[ind] = r.Int64()
	}

	return outInts, nil
}

func validName(name string) error {
	const illegal = "!@#$%^&*()=+-;:'`/.,>< ~|" + `"`

	if name == "" {
		return fmt.Errorf("empty column name")
	}

	if strings.ContainsAny(name, illegal) {
		return fmt.Errorf("illegal character in column name %s", name)
	}

	return nil
}
