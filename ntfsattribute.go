package ntfs

import (
	"io/ioutil"

	"github.com/dsoprea/go-logging"
)

// maxAttributeListDepth bounds how many times attribute-list resolution
// will follow a cross-entry reference. An attribute found inside a
// recursively-loaded entry is never itself followed as an attribute list,
// which rules out cycles without needing to track visited entry ids.
const maxAttributeListDepth = 1

// DecodedAttribute pairs a raw MftAttribute with whatever typed decoding
// applies to its type. Types this package does not specifically understand
// (Data, Bitmap, IndexRoot, ...) are left with only Raw populated; callers
// that need their bytes go through Raw.Builder().
type DecodedAttribute struct {
	Raw *MftAttribute

	StandardInformation *StandardInformation
	FileName            *FileName
	VolumeName          *string
	VolumeInformation   *VolumeInformation
	AttributeListItems  []AttributeListItem

	// ResolvedListAttributes holds the attributes an AttributeList's items
	// pointed at, one level deep.
	ResolvedListAttributes []*DecodedAttribute
}

func readAttributeContent(ma *MftAttribute, partitionBuilder VFileBuilder, clusterSize uint64) (content []byte, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	b, err := ma.Builder(partitionBuilder, clusterSize)
	log.PanicIf(err)

	vf, err := b.Open()
	log.PanicIf(err)

	content, err = ioutil.ReadAll(vf)
	log.PanicIf(err)

	return content, nil
}

// decodeOneAttribute decodes ma according to its type. table and depth
// together bound AttributeList cross-entry resolution to a single hop.
func decodeOneAttribute(ma *MftAttribute, table *MftTable, partitionBuilder VFileBuilder, clusterSize uint64, depth int) (da *DecodedAttribute, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	da = &DecodedAttribute{Raw: ma}

	switch ma.TypeID {
	case AttributeTypeStandardInformation:
		content, err := readAttributeContent(ma, partitionBuilder, clusterSize)
		log.PanicIf(err)

		si, err := parseStandardInformation(content)
		log.PanicIf(err)

		da.StandardInformation = si

	case AttributeTypeFileName:
		content, err := readAttributeContent(ma, partitionBuilder, clusterSize)
		log.PanicIf(err)

		fn, err := parseFileName(content)
		log.PanicIf(err)

		da.FileName = fn

	case AttributeTypeVolumeName:
		content, err := readAttributeContent(ma, partitionBuilder, clusterSize)
		log.PanicIf(err)

		name, err := parseVolumeName(content)
		log.PanicIf(err)

		da.VolumeName = &name

	case AttributeTypeVolumeInformation:
		content, err := readAttributeContent(ma, partitionBuilder, clusterSize)
		log.PanicIf(err)

		vi, err := parseVolumeInformation(content)
		log.PanicIf(err)

		da.VolumeInformation = vi

	case AttributeTypeAttributeList:
		content, err := readAttributeContent(ma, partitionBuilder, clusterSize)
		log.PanicIf(err)

		items, err := parseAttributeListItems(content)
		log.PanicIf(err)

		da.AttributeListItems = items

		if depth < maxAttributeListDepth && table != nil {
			da.ResolvedListAttributes = resolveAttributeListItems(items, table, partitionBuilder, clusterSize, depth+1)
		}
	}

	return da, nil
}

// resolveAttributeListItems follows each item to the MFT entry it names and
// picks out the one attribute matching its attribute id. Items whose target
// entry or attribute cannot be found are silently skipped, matching this
// package's general policy of degrading rather than aborting a scan.
func resolveAttributeListItems(items []AttributeListItem, table *MftTable, partitionBuilder VFileBuilder, clusterSize uint64, depth int) []*DecodedAttribute {
	resolved := make([]*DecodedAttribute, 0)

	for _, item := range items {
		otherEntry, err := table.Entry(item.MftEntryID)
		if err != nil {
			continue
		}

		otherContents, err := otherEntry.Contents()
		if err != nil {
			continue
		}

		for _, oma := range otherContents {
			if oma.AttributeID != item.AttributeID {
				continue
			}

			da, err := decodeOneAttribute(oma, table, partitionBuilder, clusterSize, depth)
			if err == nil {
				resolved = append(resolved, da)
			}

			break
		}
	}

	return resolved
}

// NtfsAttributes is the fully decoded, attribute-list-resolved attribute
// set of one MFT entry.
type NtfsAttributes []*DecodedAttribute

// ReadAttributes decodes every attribute of entry, following AttributeList
// references (depth-bounded) against table.
func ReadAttributes(entry *MftEntry, table *MftTable, partitionBuilder VFileBuilder, clusterSize uint64) (attributes NtfsAttributes, err error) {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err = log.Wrap(errRaw.(error))
		}
	}()

	contents, err := entry.Contents()
	log.PanicIf(err)

	attributes = make(NtfsAttributes, 0, len(contents))

	for _, ma := range contents {
		da, err := decodeOneAttribute(ma, table, partitionBuilder, clusterSize, 0)
		if err != nil {
			continue
		}

		attributes = append(attributes, da)
	}

	return attributes, nil
}

func (attributes NtfsAttributes) flatten() []*DecodedAttribute {
	flat := make([]*DecodedAttribute, 0, len(attributes))

	for _, da := range attributes {
		flat = append(flat, da)
		flat = append(flat, da.ResolvedListAttributes...)
	}

	return flat
}

// FindDatas returns every Data attribute, including ones only reachable
// through an AttributeList.
func (attributes NtfsAttributes) FindDatas() []*DecodedAttribute {
	datas := make([]*DecodedAttribute, 0)

	for _, da := range attributes.flatten() {
		if da.Raw.TypeID == AttributeTypeData {
			datas = append(datas, da)
		}
	}

	return datas
}

// FindStandardInformation returns the entry's $STANDARD_INFORMATION, if any.
func (attributes NtfsAttributes) FindStandardInformation() *StandardInformation {
	for _, da := range attributes.flatten() {
		if da.StandardInformation != nil {
			return da.StandardInformation
		}
	}

	return nil
}

// FindFileName applies the namespace-preference rule across every $FILE_NAME
// attribute the entry carries.
func (attributes NtfsAttributes) FindFileName() *FileName {
	var current *FileName

	for _, da := range attributes.flatten() {
		if da.FileName != nil {
			current = preferFileName(current, da.FileName)
		}
	}

	return current
}
