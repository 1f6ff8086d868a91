package ntfs

import (
	"testing"
)

func buildFileNameContent(parentEntryID uint64, nameSpace NameSpace, name string) []byte {
	nameBytes := encodeUtf16LeString(name)

	content := make([]byte, fileNameHeaderSize+len(nameBytes))

	content[0] = byte(parentEntryID)
	content[1] = byte(parentEntryID >> 8)
	content[2] = byte(parentEntryID >> 16)
	content[3] = byte(parentEntryID >> 24)
	content[4] = byte(parentEntryID >> 32)
	content[5] = byte(parentEntryID >> 40)

	content[64] = byte(len(nameBytes) / 2)
	content[65] = byte(nameSpace)

	copy(content[fileNameHeaderSize:], nameBytes)

	return content
}

func TestParseFileName_DecodesNameAndParent(t *testing.T) {
	content := buildFileNameContent(5, NameSpaceWin32, "report.txt")

	fn, err := parseFileName(content)
	if err != nil {
		t.Fatalf("did not expect an error: %v", err)
	}

	if fn.ParentMftEntryID != 5 {
		t.Fatalf("parent entry id not correct: %d", fn.ParentMftEntryID)
	}

	if fn.FileName != "report.txt" {
		t.Fatalf("name not correct: %q", fn.FileName)
	}

	if fn.NameSpace != NameSpaceWin32 {
		t.Fatalf("namespace not correct: %v", fn.NameSpace)
	}
}

func TestParseFileName_UnknownNameSpaceIsAnError(t *testing.T) {
	content := buildFileNameContent(5, NameSpaceWin32, "x")
	content[65] = 4 // one past NameSpaceDosWin32

	_, err := parseFileName(content)
	if err == nil {
		t.Fatalf("expected an error for an unknown namespace")
	}
}

func TestParseFileName_TooShortIsAnError(t *testing.T) {
	_, err := parseFileName(make([]byte, fileNameHeaderSize-1))
	if err == nil {
		t.Fatalf("expected an error for a truncated buffer")
	}
}

func TestPreferFileName_FirstWinsOverLaterDos(t *testing.T) {
	posix, err := parseFileName(buildFileNameContent(5, NameSpacePosix, "LONGNAME.TXT"))
	if err != nil {
		t.Fatalf("did not expect an error: %v", err)
	}

	dos, err := parseFileName(buildFileNameContent(5, NameSpaceDos, "LONGNA~1.TXT"))
	if err != nil {
		t.Fatalf("did not expect an error: %v", err)
	}

	result := preferFileName(nil, posix)
	result = preferFileName(result, dos)

	if result != posix {
		t.Fatalf("expected the first (Posix) FileName to win over a later Dos one")
	}
}

func TestPreferFileName_Win32OverridesEarlierPosix(t *testing.T) {
	posix, err := parseFileName(buildFileNameContent(5, NameSpacePosix, "LONGNAME.TXT"))
	if err != nil {
		t.Fatalf("did not expect an error: %v", err)
	}

	win32, err := parseFileName(buildFileNameContent(5, NameSpaceWin32, "LongName.txt"))
	if err != nil {
		t.Fatalf("did not expect an error: %v", err)
	}

	result := preferFileName(nil, posix)
	result = preferFileName(result, win32)

	if result != win32 {
		t.Fatalf("expected a later Win32 FileName to override the earlier Posix one")
	}
}
