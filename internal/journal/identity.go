package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// DomainCommand prefixes command hashes. The version suffix allows the
// canonical encoding to change without colliding with old IDs.
const DomainCommand = "scorebridge/command/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator removes any domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CommandID computes the content-addressed ID of a journaled command.
//
// The canonical encoding is the run ID, seq, kind, opcode, every field in
// shortest round-trip form and the NFC-normalized text, each terminated
// by 0x00. Block is excluded: the same command applied one block later is
// the same command.
func CommandID(c Command) string {
	buf := make([]byte, 0, 64+len(c.Text))
	buf = appendPart(buf, c.RunID)
	buf = strconv.AppendInt(buf, c.Seq, 10)
	buf = append(buf, 0x00)
	buf = appendPart(buf, string(c.Kind))
	if c.Opcode != 0 {
		buf = append(buf, byte(c.Opcode))
	}
	buf = append(buf, 0x00)
	buf = appendFields(buf, c.Fields)
	buf = append(buf, 0x00)
	buf = appendPart(buf, norm.NFC.String(c.Text))
	return hashWithDomain(DomainCommand, buf)
}

func appendPart(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0x00)
}
