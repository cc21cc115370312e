package codec_test

import (
	"fmt"
	"log"

	"github.com/ssargent/gsf/pkg/codec"
	"github.com/ssargent/gsf/pkg/record"
)

// ExampleRecordCodec_basic demonstrates basic record encoding and decoding
func ExampleRecordCodec_basic() {
	c := codec.NewRecordCodec()
	ctx := codec.NewContext(codec.LibraryVersion())

	in := &record.Records{Comment: record.Comment{
		Time:    record.Timespec{Sec: 1718000000},
		Comment: "hello",
	}}
	encoded, err := c.Encode(ctx, record.DataID{Type: record.TypeComment}, in)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Encoded %d bytes\n", len(encoded))

	frame, err := codec.DecodeFrame(encoded)
	if err != nil {
		log.Fatal(err)
	}

	var out record.Records
	if err := c.Decode(ctx, frame, encoded[codec.FrameHeaderSize:], &out); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Type: %s\n", frame.Type)
	fmt.Printf("Comment: %s\n", out.Comment.Comment)

	// Output:
	// Encoded 28 bytes
	// Type: comment
	// Comment: hello
}

// ExampleRecordCodec_errorHandling demonstrates error handling
func ExampleRecordCodec_errorHandling() {
	c := codec.NewRecordCodec()

	frame := codec.Frame{Type: record.Type(77)}
	err := c.Decode(codec.NewContext(codec.LibraryVersion()), frame, nil, &record.Records{})
	if err != nil {
		fmt.Printf("Decode error: %v\n", err)
	}

	// Output:
	// Decode error: record type 77: unrecognized record id
}

// ExamplePadLength demonstrates the padding rule change after version 1.2
func ExamplePadLength() {
	for _, v := range []codec.Version{{Major: 1, Minor: 2}, codec.LibraryVersion()} {
		fmt.Printf("%s: %d\n", v, codec.PadLength(v, 13))
	}

	// Output:
	// GSF-v01.02: 1
	// GSF-v03.10: 3
}
