package catalog

const (
	kanp = uint32(FamilyKANP) << familyShift
	oanp = uint32(FamilyOANP) << familyShift

	cmd = uint32(RoleCommand) << roleShift
	res = uint32(RoleResponse) << roleShift
	evt = uint32(RoleEvent) << roleShift

	nsGen  = uint32(NamespaceGeneral) << namespaceShift
	nsMgt  = uint32(NamespaceManage) << namespaceShift
	nsKWS  = uint32(NamespaceWorkspace) << namespaceShift
	nsChat = uint32(NamespaceChat) << namespaceShift
	nsKFS  = uint32(NamespaceFiles) << namespaceShift
	nsVNC  = uint32(NamespaceVNC) << namespaceShift
	nsWB   = uint32(NamespaceWhiteboard) << namespaceShift
	nsPB   = uint32(NamespacePublicBox) << namespaceShift
)

// Well-known KANP types.
const (
	KANPResOK                = kanp | res | nsGen | 0<<subtypeShift
	KANPResFail              = kanp | res | nsGen | 1<<subtypeShift
	KANPCmdMgtSelectRole     = kanp | cmd | nsMgt | 0<<subtypeShift
	KANPCmdMgtCreateKWS      = kanp | cmd | nsMgt | 1<<subtypeShift
	KANPResMgtKWSCreated     = kanp | res | nsMgt | 1<<subtypeShift
	KANPCmdKWSInviteKWS      = kanp | cmd | nsKWS | 2<<subtypeShift
	KANPResKWSInviteKWS      = kanp | res | nsKWS | 2<<subtypeShift
	KANPCmdKWSConnectKWS     = kanp | cmd | nsKWS | 3<<subtypeShift
	KANPResKWSConnectKWS     = kanp | res | nsKWS | 3<<subtypeShift
	KANPCmdKWSDisconnectKWS  = kanp | cmd | nsKWS | 4<<subtypeShift
	KANPCmdKWSGetUURL        = kanp | cmd | nsKWS | 5<<subtypeShift
	KANPResKWSUURL           = kanp | res | nsKWS | 5<<subtypeShift
	KANPCmdKWSSetUserPwd     = kanp | cmd | nsKWS | 6<<subtypeShift
	KANPResKWSPropChange     = kanp | res | nsKWS | 6<<subtypeShift
	KANPCmdKWSSetUserName    = kanp | cmd | nsKWS | 7<<subtypeShift
	KANPCmdKWSSetUserAdmin   = kanp | cmd | nsKWS | 8<<subtypeShift
	KANPCmdKWSSetUserManager = kanp | cmd | nsKWS | 9<<subtypeShift
	KANPCmdKWSSetUserLock    = kanp | cmd | nsKWS | 10<<subtypeShift
	KANPCmdKWSSetUserBan     = kanp | cmd | nsKWS | 11<<subtypeShift
	KANPCmdKWSSetName        = kanp | cmd | nsKWS | 12<<subtypeShift
	KANPCmdKWSSetSecure      = kanp | cmd | nsKWS | 13<<subtypeShift
	KANPCmdKWSSetFreeze      = kanp | cmd | nsKWS | 14<<subtypeShift
	KANPCmdKWSSetDeepFreeze  = kanp | cmd | nsKWS | 15<<subtypeShift
	KANPCmdKWSSetThinKFS     = kanp | cmd | nsKWS | 16<<subtypeShift
	KANPCmdChatMsg           = kanp | cmd | nsChat | 1<<subtypeShift
	KANPCmdKFSDownloadReq    = kanp | cmd | nsKFS | 1<<subtypeShift
	KANPResKFSDownloadReq    = kanp | res | nsKFS | 1<<subtypeShift
	KANPCmdKFSUploadReq      = kanp | cmd | nsKFS | 2<<subtypeShift
	KANPResKFSUploadReq      = kanp | res | nsKFS | 2<<subtypeShift
	KANPCmdKFSDownloadData   = kanp | cmd | nsKFS | 3<<subtypeShift
	KANPResKFSDownloadData   = kanp | res | nsKFS | 3<<subtypeShift
	KANPCmdKFSPhase1         = kanp | cmd | nsKFS | 4<<subtypeShift
	KANPResKFSPhase1         = kanp | res | nsKFS | 4<<subtypeShift
	KANPCmdKFSPhase2         = kanp | cmd | nsKFS | 5<<subtypeShift
	KANPCmdVNCStartTicket    = kanp | cmd | nsVNC | 1<<subtypeShift
	KANPResVNCStartTicket    = kanp | res | nsVNC | 1<<subtypeShift
	KANPCmdVNCStartSession   = kanp | cmd | nsVNC | 2<<subtypeShift
	KANPResVNCStartSession   = kanp | res | nsVNC | 2<<subtypeShift
	KANPCmdVNCConnectTicket  = kanp | cmd | nsVNC | 3<<subtypeShift
	KANPResVNCConnectTicket  = kanp | res | nsVNC | 3<<subtypeShift
	KANPCmdVNCConnectSession = kanp | cmd | nsVNC | 4<<subtypeShift
	KANPCmdWBDraw            = kanp | cmd | nsWB | 1<<subtypeShift
	KANPCmdWBClear           = kanp | cmd | nsWB | 2<<subtypeShift
	KANPCmdPBAcceptChat      = kanp | cmd | nsPB | 1<<subtypeShift
	KANPEvtKWSCreated        = kanp | evt | nsKWS | 1<<subtypeShift
	KANPEvtKWSInvited        = kanp | evt | nsKWS | 2<<subtypeShift
	KANPEvtKWSUserRegistered = kanp | evt | nsKWS | 3<<subtypeShift
	KANPEvtKWSDeleted        = kanp | evt | nsKWS | 4<<subtypeShift
	KANPEvtKWSLogOut         = kanp | evt | nsKWS | 5<<subtypeShift
	KANPEvtKWSPropChange     = kanp | evt | nsKWS | 6<<subtypeShift
	KANPEvtChatMsg           = kanp | evt | nsChat | 1<<subtypeShift
	KANPEvtKFSPhase1         = kanp | evt | nsKFS | 1<<subtypeShift
	KANPEvtKFSPhase2         = kanp | evt | nsKFS | 2<<subtypeShift
	KANPEvtKFSDownload       = kanp | evt | nsKFS | 3<<subtypeShift
	KANPEvtVNCStart          = kanp | evt | nsVNC | 1<<subtypeShift
	KANPEvtVNCEnd            = kanp | evt | nsVNC | 2<<subtypeShift
	KANPEvtWBDraw            = kanp | evt | nsWB | 1<<subtypeShift
	KANPEvtWBClear           = kanp | evt | nsWB | 2<<subtypeShift
	KANPEvtPBTriggerChat     = kanp | evt | nsPB | 1<<subtypeShift
	KANPEvtPBChatAccepted    = kanp | evt | nsPB | 2<<subtypeShift
	KANPEvtPBTriggerKWS      = kanp | evt | nsPB | 3<<subtypeShift
)

// Well-known OANP types. OANP carries its operation in the namespace field.
const (
	OANPResOK                 = oanp | res | 0<<namespaceShift
	OANPResFail               = oanp | res | 1<<namespaceShift
	OANPCmdCancelCmd          = oanp | cmd | 1<<namespaceShift
	OANPCmdIsKWSUser          = oanp | cmd | 2<<namespaceShift
	OANPResIsKWSUser          = oanp | res | 2<<namespaceShift
	OANPCmdOpenKWS            = oanp | cmd | 3<<namespaceShift
	OANPCmdJoinKWS            = oanp | cmd | 4<<namespaceShift
	OANPResJoinKWS            = oanp | res | 4<<namespaceShift
	OANPCmdCreateKWS          = oanp | cmd | 5<<namespaceShift
	OANPResCreateKWS          = oanp | res | 5<<namespaceShift
	OANPCmdInviteToKWS        = oanp | cmd | 6<<namespaceShift
	OANPResInviteToKWS        = oanp | res | 6<<namespaceShift
	OANPCmdGetSKURL           = oanp | cmd | 7<<namespaceShift
	OANPResGetSKURL           = oanp | res | 7<<namespaceShift
	OANPCmdLookupRecAddr      = oanp | cmd | 8<<namespaceShift
	OANPResLookupRecAddr      = oanp | res | 8<<namespaceShift
	OANPCmdStartScreenShare   = oanp | cmd | 9<<namespaceShift
	OANPCmdJoinScreenShare    = oanp | cmd | 10<<namespaceShift
	OANPCmdWorkspaceSubscribe = oanp | cmd | 11<<namespaceShift
	OANPCmdDropfile           = oanp | cmd | 12<<namespaceShift
	OANPCmdChat               = oanp | cmd | 13<<namespaceShift
	OANPCmdSetNotifyMode      = oanp | cmd | 14<<namespaceShift
	OANPCmdGetFile            = oanp | cmd | 15<<namespaceShift
	OANPCmdOpenFile           = oanp | cmd | 16<<namespaceShift
	OANPCmdFileStatus         = oanp | cmd | 17<<namespaceShift
	OANPResFileStatus         = oanp | res | 17<<namespaceShift
	OANPEvtNewKWMState        = oanp | evt | 1<<namespaceShift
	OANPEvtUserUpdate         = oanp | evt | 2<<namespaceShift
	OANPEvtChatMsg            = oanp | evt | 3<<namespaceShift
	OANPEvtFSUpdate           = oanp | evt | 4<<namespaceShift
	OANPEvtVNCStart           = oanp | evt | 5<<namespaceShift
	OANPEvtVNCEnd             = oanp | evt | 6<<namespaceShift
)

var names = map[uint32]string{
	KANPResOK:                 "KANP_RES_OK",
	KANPResFail:               "KANP_RES_FAIL",
	KANPCmdMgtSelectRole:      "KANP_CMD_MGT_SELECT_ROLE",
	KANPCmdMgtCreateKWS:       "KANP_CMD_MGT_CREATE_KWS",
	KANPResMgtKWSCreated:      "KANP_RES_MGT_KWS_CREATED",
	KANPCmdKWSInviteKWS:       "KANP_CMD_KWS_INVITE_KWS",
	KANPResKWSInviteKWS:       "KANP_RES_KWS_INVITE_KWS",
	KANPCmdKWSConnectKWS:      "KANP_CMD_KWS_CONNECT_KWS",
	KANPResKWSConnectKWS:      "KANP_RES_KWS_CONNECT_KWS",
	KANPCmdKWSDisconnectKWS:   "KANP_CMD_KWS_DISCONNECT_KWS",
	KANPCmdKWSGetUURL:         "KANP_CMD_KWS_GET_UURL",
	KANPResKWSUURL:            "KANP_RES_KWS_UURL",
	KANPCmdKWSSetUserPwd:      "KANP_CMD_KWS_SET_USER_PWD",
	KANPResKWSPropChange:      "KANP_RES_KWS_PROP_CHANGE",
	KANPCmdKWSSetUserName:     "KANP_CMD_KWS_SET_USER_NAME",
	KANPCmdKWSSetUserAdmin:    "KANP_CMD_KWS_SET_USER_ADMIN",
	KANPCmdKWSSetUserManager:  "KANP_CMD_KWS_SET_USER_MANAGER",
	KANPCmdKWSSetUserLock:     "KANP_CMD_KWS_SET_USER_LOCK",
	KANPCmdKWSSetUserBan:      "KANP_CMD_KWS_SET_USER_BAN",
	KANPCmdKWSSetName:         "KANP_CMD_KWS_SET_NAME",
	KANPCmdKWSSetSecure:       "KANP_CMD_KWS_SET_SECURE",
	KANPCmdKWSSetFreeze:       "KANP_CMD_KWS_SET_FREEZE",
	KANPCmdKWSSetDeepFreeze:   "KANP_CMD_KWS_SET_DEEP_FREEZE",
	KANPCmdKWSSetThinKFS:      "KANP_CMD_KWS_SET_THIN_KFS",
	KANPCmdChatMsg:            "KANP_CMD_CHAT_MSG",
	KANPCmdKFSDownloadReq:     "KANP_CMD_KFS_DOWNLOAD_REQ",
	KANPResKFSDownloadReq:     "KANP_RES_KFS_DOWNLOAD_REQ",
	KANPCmdKFSUploadReq:       "KANP_CMD_KFS_UPLOAD_REQ",
	KANPResKFSUploadReq:       "KANP_RES_KFS_UPLOAD_REQ",
	KANPCmdKFSDownloadData:    "KANP_CMD_KFS_DOWNLOAD_DATA",
	KANPResKFSDownloadData:    "KANP_RES_KFS_DOWNLOAD_DATA",
	KANPCmdKFSPhase1:          "KANP_CMD_KFS_PHASE_1",
	KANPResKFSPhase1:          "KANP_RES_KFS_PHASE_1",
	KANPCmdKFSPhase2:          "KANP_CMD_KFS_PHASE_2",
	KANPCmdVNCStartTicket:     "KANP_CMD_VNC_START_TICKET",
	KANPResVNCStartTicket:     "KANP_RES_VNC_START_TICKET",
	KANPCmdVNCStartSession:    "KANP_CMD_VNC_START_SESSION",
	KANPResVNCStartSession:    "KANP_RES_VNC_START_SESSION",
	KANPCmdVNCConnectTicket:   "KANP_CMD_VNC_CONNECT_TICKET",
	KANPResVNCConnectTicket:   "KANP_RES_VNC_CONNECT_TICKET",
	KANPCmdVNCConnectSession:  "KANP_CMD_VNC_CONNECT_SESSION",
	KANPCmdWBDraw:             "KANP_CMD_WB_DRAW",
	KANPCmdWBClear:            "KANP_CMD_WB_CLEAR",
	KANPCmdPBAcceptChat:       "KANP_CMD_PB_ACCEPT_CHAT",
	KANPEvtKWSCreated:         "KANP_EVT_KWS_CREATED",
	KANPEvtKWSInvited:         "KANP_EVT_KWS_INVITED",
	KANPEvtKWSUserRegistered:  "KANP_EVT_KWS_USER_REGISTERED",
	KANPEvtKWSDeleted:         "KANP_EVT_KWS_DELETED",
	KANPEvtKWSLogOut:          "KANP_EVT_KWS_LOG_OUT",
	KANPEvtKWSPropChange:      "KANP_EVT_KWS_PROP_CHANGE",
	KANPEvtChatMsg:            "KANP_EVT_CHAT_MSG",
	KANPEvtKFSPhase1:          "KANP_EVT_KFS_PHASE_1",
	KANPEvtKFSPhase2:          "KANP_EVT_KFS_PHASE_2",
	KANPEvtKFSDownload:        "KANP_EVT_KFS_DOWNLOAD",
	KANPEvtVNCStart:           "KANP_EVT_VNC_START",
	KANPEvtVNCEnd:             "KANP_EVT_VNC_END",
	KANPEvtWBDraw:             "KANP_EVT_WB_DRAW",
	KANPEvtWBClear:            "KANP_EVT_WB_CLEAR",
	KANPEvtPBTriggerChat:      "KANP_EVT_PB_TRIGGER_CHAT",
	KANPEvtPBChatAccepted:     "KANP_EVT_PB_CHAT_ACCEPTED",
	KANPEvtPBTriggerKWS:       "KANP_EVT_PB_TRIGGER_KWS",
	OANPResOK:                 "OANP_RES_OK",
	OANPResFail:               "OANP_RES_FAIL",
	OANPCmdCancelCmd:          "OANP_CMD_CANCEL_CMD",
	OANPCmdIsKWSUser:          "OANP_CMD_IS_KWS_USER",
	OANPResIsKWSUser:          "OANP_RES_IS_KWS_USER",
	OANPCmdOpenKWS:            "OANP_CMD_OPEN_KWS",
	OANPCmdJoinKWS:            "OANP_CMD_JOIN_KWS",
	OANPResJoinKWS:            "OANP_RES_JOIN_KWS",
	OANPCmdCreateKWS:          "OANP_CMD_CREATE_KWS",
	OANPResCreateKWS:          "OANP_RES_CREATE_KWS",
	OANPCmdInviteToKWS:        "OANP_CMD_INVITE_TO_KWS",
	OANPResInviteToKWS:        "OANP_RES_INVITE_TO_KWS",
	OANPCmdGetSKURL:           "OANP_CMD_GET_SKURL",
	OANPResGetSKURL:           "OANP_RES_GET_SKURL",
	OANPCmdLookupRecAddr:      "OANP_CMD_LOOKUP_REC_ADDR",
	OANPResLookupRecAddr:      "OANP_RES_LOOKUP_REC_ADDR",
	OANPCmdStartScreenShare:   "OANP_CMD_START_SCREEN_SHARE",
	OANPCmdJoinScreenShare:    "OANP_CMD_JOIN_SCREEN_SHARE",
	OANPCmdWorkspaceSubscribe: "OANP_CMD_WORKSPACE_SUBSCRIBE",
	OANPCmdDropfile:           "OANP_CMD_DROPFILE",
	OANPCmdChat:               "OANP_CMD_CHAT",
	OANPCmdSetNotifyMode:      "OANP_CMD_SET_NOTIFY_MODE",
	OANPCmdGetFile:            "OANP_CMD_GET_FILE",
	OANPCmdOpenFile:           "OANP_CMD_OPEN_FILE",
	OANPCmdFileStatus:         "OANP_CMD_FILE_STATUS",
	OANPResFileStatus:         "OANP_RES_FILE_STATUS",
	OANPEvtNewKWMState:        "OANP_EVT_NEW_KWM_STATE",
	OANPEvtUserUpdate:         "OANP_EVT_USER_UPDATE",
	OANPEvtChatMsg:            "OANP_EVT_CHAT_MSG",
	OANPEvtFSUpdate:           "OANP_EVT_FS_UPDATE",
	OANPEvtVNCStart:           "OANP_EVT_VNC_START",
	OANPEvtVNCEnd:             "OANP_EVT_VNC_END",
}

// Name returns the symbolic name of a well-known type, or "UNKNOWN".
func Name(t uint32) string {
	if n, ok := names[t]; ok {
		return n
	}
	return "UNKNOWN"
}

// Lookup resolves a symbolic name such as "KANP_CMD_MGT_SELECT_ROLE".
func Lookup(name string) (uint32, bool) {
	for t, n := range names {
		if n == name {
			return t, true
		}
	}
	return 0, false
}
