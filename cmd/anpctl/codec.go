package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/anp/internal/admin"
	"github.com/danmuck/anp/internal/protocol"
	"github.com/danmuck/anp/internal/protocol/catalog"
	"github.com/go-faster/errors"
	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"
)

var encodeOpts struct {
	major    uint32
	minor    uint32
	typ      string
	id       uint64
	hex      bool
	noHeader bool
	out      string
}

var encodeCmd = &cobra.Command{
	Use:   "encode [kind:value]...",
	Short: "Encode a message from element arguments",
	Example: `  anpctl encode --type KANP_CMD_CHAT_MSG u64:7 str:hello --hex
  anpctl encode --type 0x10010100 bin:deadbeef --out msg.bin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMessage(args)
		if err != nil {
			return err
		}
		raw, err := protocol.Serialize(m, !encodeOpts.noHeader)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if encodeOpts.out != "" {
			f, err := os.Create(encodeOpts.out)
			if err != nil {
				return errors.Wrap(err, "create output")
			}
			defer f.Close()
			out = f
		}
		if encodeOpts.hex {
			_, err = fmt.Fprintln(out, hex.EncodeToString(raw))
		} else {
			_, err = out.Write(raw)
		}
		return err
	},
}

func buildMessage(args []string) (*protocol.Message, error) {
	typ, err := admin.ParseType(encodeOpts.typ)
	if err != nil {
		return nil, err
	}
	elems, err := parseElements(args)
	if err != nil {
		return nil, err
	}
	m := protocol.NewMessage(encodeOpts.major, encodeOpts.minor, typ, encodeOpts.id)
	for _, e := range elems {
		if err := m.Add(e); err != nil {
			return nil, err
		}
	}
	return m, nil
}

var decodeOpts struct {
	hex     bool
	lenient bool
}

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode a serialized message from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open input")
			}
			defer f.Close()
			in = f
		}
		raw, err := io.ReadAll(in)
		if err != nil {
			return errors.Wrap(err, "read input")
		}
		if decodeOpts.hex {
			raw, err = hex.DecodeString(strings.TrimSpace(string(raw)))
			if err != nil {
				return errors.Wrap(err, "decode hex")
			}
		}
		m, err := protocol.Deserialize(raw, protocol.DecodeOptions{Lenient: decodeOpts.lenient})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderMessage(m))
		return nil
	},
}

func renderMessage(m *protocol.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "version %d.%d  id %d\n", m.Major, m.Minor, m.ID)
	fmt.Fprintf(&b, "type    %s  %s\n", catalog.Name(m.Type), catalog.Describe(m.Type))

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Kind", "Value"})
	for i, e := range m.Elements {
		t.AppendRow(table.Row{i, e.Kind().String(), formatElement(e)})
	}
	b.WriteString(t.Render())
	return b.String()
}

func init() {
	f := encodeCmd.Flags()
	f.Uint32Var(&encodeOpts.major, "major", catalog.KANPMajor, "protocol major version")
	f.Uint32Var(&encodeOpts.minor, "minor", catalog.KANPMinor, "protocol minor version")
	f.StringVar(&encodeOpts.typ, "type", "KANP_RES_OK", "message type, by name or number")
	f.Uint64Var(&encodeOpts.id, "id", 0, "message id")
	f.BoolVar(&encodeOpts.hex, "hex", false, "write hex instead of raw bytes")
	f.BoolVar(&encodeOpts.noHeader, "no-header", false, "write only the payload")
	f.StringVarP(&encodeOpts.out, "out", "o", "", "output file (default stdout)")

	d := decodeCmd.Flags()
	d.BoolVar(&decodeOpts.hex, "hex", false, "input is hex text")
	d.BoolVar(&decodeOpts.lenient, "lenient", false, "skip unknown element tags")
}
