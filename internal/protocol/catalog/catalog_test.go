package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatchesWellKnownTypes(t *testing.T) {
	cases := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"KANP_RES_OK", Build(FamilyKANP, RoleResponse, NamespaceGeneral, 0), 0x14000000},
		{"KANP_RES_FAIL", Build(FamilyKANP, RoleResponse, NamespaceGeneral, 1), 0x14000100},
		{"KANP_CMD_MGT_SELECT_ROLE", Build(FamilyKANP, RoleCommand, NamespaceManage, 0), 0x10010000},
		{"KANP_EVT_KWS_LOG_OUT", Build(FamilyKANP, RoleEvent, NamespaceWorkspace, 5), 0x18020500},
		{"OANP_CMD_OPEN_KWS", Build(FamilyOANP, RoleCommand, 3, 0), 0x20030000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
			assert.Equal(t, tc.name, Name(tc.got))
		})
	}
	assert.Equal(t, KANPCmdMgtSelectRole, uint32(0x10010000))
	assert.Equal(t, OANPCmdOpenKWS, uint32(0x20030000))
}

func TestSplitInvertsBuild(t *testing.T) {
	typ := Build(FamilyKANP, RoleEvent, NamespacePublicBox, 3)
	f := Split(typ)
	assert.Equal(t, Fields{Family: FamilyKANP, Role: RoleEvent, Namespace: NamespacePublicBox, Subtype: 3}, f)
	assert.Equal(t, KANPEvtPBTriggerKWS, typ)
	assert.Equal(t, uint32(NamespacePublicBox)<<16, NamespaceOf(typ))
}

func TestBuildTruncatesWideFields(t *testing.T) {
	typ := Build(FamilyKANP, Role(7), Namespace(0xffff), 0)
	f := Split(typ)
	assert.Equal(t, RoleReserved, f.Role)
	assert.Equal(t, Namespace(0x3ff), f.Namespace)
	assert.Equal(t, uint8(0), f.Reserved)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "KANP | CMD | MGT | 1 (0x10010100)", Describe(KANPCmdMgtCreateKWS))
	assert.Equal(t, "KANP | RES | GEN | 0 (0x14000000)", Describe(KANPResOK))
	assert.Equal(t, "KANP | EVT | APP_SHARING | 2 (0x18060200)", Describe(KANPEvtVNCEnd))
	assert.Equal(t, "OANP | CMD | OP 3 | 0 (0x20030000)", Describe(OANPCmdOpenKWS))
}

func TestDescribeUnknownEnumerants(t *testing.T) {
	assert.Equal(t, "UNKNOWN_PROTO | CMD | MGT | 0 (0x00010000)", Describe(0x00010000))
	assert.Equal(t, "KANP | UNKNOWN_ROLE | GEN | 0 (0x1c000000)", Describe(0x1c000000))
	assert.Equal(t, "KANP | CMD | UNKNOWN_NS 42 | 7 (0x102a0700)", Describe(0x102a0700))
	assert.Equal(t, "KANP | CMD | GEN | 0 (0x10000005) reserved=0x05", Describe(0x10000005))
}

func TestNameAndLookup(t *testing.T) {
	assert.Equal(t, "UNKNOWN", Name(0xffffffff))
	assert.Equal(t, "OANP_RES_FILE_STATUS", Name(OANPResFileStatus))

	typ, ok := Lookup("KANP_CMD_KFS_PHASE_2")
	require.True(t, ok)
	assert.Equal(t, KANPCmdKFSPhase2, typ)

	_, ok = Lookup("KANP_CMD_NOPE")
	assert.False(t, ok)
}

func TestWithRole(t *testing.T) {
	assert.Equal(t, KANPResKWSConnectKWS, WithRole(KANPCmdKWSConnectKWS, RoleResponse))
	assert.Equal(t, RoleResponse, RoleOf(WithRole(KANPCmdKWSConnectKWS, RoleResponse)))
	assert.Equal(t, FamilyOANP, FamilyOf(OANPEvtChatMsg))
}

func TestEveryNameIsUniqueAndResolvable(t *testing.T) {
	seen := make(map[string]bool, len(names))
	for typ, n := range names {
		require.False(t, seen[n], "duplicate name %s", n)
		seen[n] = true
		back, ok := Lookup(n)
		require.True(t, ok)
		assert.Equal(t, typ, back)
		assert.Equal(t, uint8(0), Split(typ).Reserved, n)
	}
}
