// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
)

func int64ToBinary(num int64) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSizeNumberLength))
	if err := binary.Write(buf, binary.LittleEndian, &num); err != nil {
		panic(err) // If this thing fails you're probably having bigger problems
	}
	// the field is wider than the number, pad it out
	buf.Write(make([]byte, HeaderSizeNumberLength-buf.Len()))
	return buf.Bytes()
}

func binaryToint64(bts []byte) (int64, error) {
	var num int64
	if err := binary.Read(bytes.NewReader(bts), binary.LittleEndian, &num); err != nil {
		return 0, err
	}
	return num, nil
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	enc := gob.NewEncoder(&encoded)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	dec := gob.NewDecoder(bytes.NewBuffer(bts))
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return nil
}
