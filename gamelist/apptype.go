package gamelist

import (
	"fmt"
	"strconv"
	"strings"
)

// Title category as reported by the platform title service
type AppType uint32

const (
	AppTypeGame               AppType = 0x80000000
	AppTypeGameWii            AppType = 0x8000002E
	AppTypeSystemMenu         AppType = 0x90000001
	AppTypeSystemApps         AppType = 0x90000005
	AppTypeAccountApps        AppType = 0x90000006
	AppTypeSystemSettings     AppType = 0x90000007
	AppTypeFriendList         AppType = 0x90000008
	AppTypeMiiverse           AppType = 0x9000000A
	AppTypeEShop              AppType = 0x9000000E
	AppTypeBrowser            AppType = 0x9000001F
	AppTypeDownloadManagement AppType = 0x9000002F
)

// Id of the synthetic entry launching the vWii system menu
const VWiiTitleID uint64 = 0x0000000100000002

var appTypeNames = map[AppType]string{
	AppTypeGame:               "game",
	AppTypeGameWii:            "game_wii",
	AppTypeSystemMenu:         "system_menu",
	AppTypeSystemApps:         "system_apps",
	AppTypeAccountApps:        "account_apps",
	AppTypeSystemSettings:     "system_settings",
	AppTypeFriendList:         "friend_list",
	AppTypeMiiverse:           "miiverse",
	AppTypeEShop:              "eshop",
	AppTypeBrowser:            "browser",
	AppTypeDownloadManagement: "download_management",
}

// Categories queried, in order, when the menu enumerates installed titles
var DefaultCategories = []AppType{
	AppTypeGame,
	AppTypeGameWii,
	AppTypeSystemApps,
	AppTypeSystemSettings,
	AppTypeFriendList,
	AppTypeMiiverse,
	AppTypeEShop,
	AppTypeBrowser,
	AppTypeDownloadManagement,
	AppTypeAccountApps,
	AppTypeSystemMenu,
}

func (a AppType) String() string {
	if name, ok := appTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("%08x", uint32(a))
}

// Parse a category by name ("eshop") or by its hex value ("9000000e")
func ParseAppType(s string) (AppType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for appType, name := range appTypeNames {
		if name == s {
			return appType, nil
		}
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown app type %q", s)
	}
	return AppType(v), nil
}

// Parse a configured category list, an empty list means DefaultCategories
func ParseCategories(names []string) ([]AppType, error) {
	if len(names) == 0 {
		return append([]AppType(nil), DefaultCategories...), nil
	}
	categories := make([]AppType, 0, len(names))
	for _, name := range names {
		appType, err := ParseAppType(name)
		if err != nil {
			return nil, err
		}
		categories = append(categories, appType)
	}
	return categories, nil
}
