package ntfs

import (
	"encoding/binary"

	"github.com/dsoprea/go-logging"
)

const attributeListItemHeaderSize = 26

// AttributeListItem is one entry of an $ATTRIBUTE_LIST attribute, pointing
// at an attribute that actually lives in a different MFT entry.
type AttributeListItem struct {
	TypeID      NtfsAttributeType
	RecordSize  uint16
	VncStart    uint64
	MftEntryID  uint64
	Sequence    uint16
	AttributeID uint16
	Name        string
}

// parseAttributeListItems decodes every item in an $ATTRIBUTE_LIST content
// buffer. It stops, without error, at the type-id end sentinel or when it
// runs out of room for another header.
func parseAttributeListItems(content []byte) (items []AttributeListItem, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	items = make([]AttributeListItem, 0)

	offset := 0

	for offset+attributeListItemHeaderSize <= len(content) {
		typeIDRaw := binary.LittleEndian.Uint32(content[offset : offset+4])
		if typeIDRaw == 0xFFFFFFFF {
			break
		}

		recordSize := binary.LittleEndian.Uint16(content[offset+4 : offset+6])
		if recordSize == 0 {
			break
		}

		nameSize := content[offset+6]
		nameOffset := content[offset+7]

		item := AttributeListItem{
			TypeID:      NtfsAttributeType(typeIDRaw),
			RecordSize:  recordSize,
			VncStart:    binary.LittleEndian.Uint64(content[offset+8 : offset+16]),
			MftEntryID:  padU64(content[offset+16 : offset+22]),
			Sequence:    binary.LittleEndian.Uint16(content[offset+22 : offset+24]),
			AttributeID: binary.LittleEndian.Uint16(content[offset+24 : offset+26]),
		}

		if nameSize > 0 {
			nameStart := offset + int(nameOffset)
			nameEnd := nameStart + int(nameSize)*2

			if nameEnd <= len(content) {
				name, err := DecodeUtf16Le(content[nameStart:nameEnd])
				log.PanicIf(err)

				item.Name = name
			}
		}

		items = append(items, item)

		offset += int(recordSize)
	}

	return items, nil
}
