package staff

import (
	"errors"
	"fmt"
	"strings"

	"plushiebot/bot/common"
	"plushiebot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func newOptionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	m := make(optionMap, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (m optionMap) stringPtr(name string) *string {
	o, ok := m[name]
	if !ok {
		return nil
	}
	v := strings.TrimSpace(o.StringValue())
	return &v
}

func (m optionMap) intPtr(name string) *int64 {
	o, ok := m[name]
	if !ok {
		return nil
	}
	v := o.IntValue()
	return &v
}

func (m optionMap) rolePtr(name string) *int64 {
	o, ok := m[name]
	if !ok {
		return nil
	}
	// a nil session yields a role carrying only the id
	id := common.ParseID(o.RoleValue(nil, "").ID)
	if id == 0 {
		return nil
	}
	return &id
}

func (m optionMap) userID(name string) int64 {
	o, ok := m[name]
	if !ok {
		return 0
	}
	return common.ParseID(o.UserValue(nil).ID)
}

// parsePromo builds a full promo from /set-promo options
func parsePromo(opts []*discordgo.ApplicationCommandInteractionDataOption) (*entities.Promo, error) {
	m := newOptionMap(opts)
	name := m.stringPtr("name")
	if name == nil || *name == "" {
		return nil, errors.New("promo name is required")
	}

	promo := entities.Promo{Name: *name}
	update := parsePromoUpdate(opts)
	promo = update.Apply(promo)

	if err := promo.Validate(); err != nil {
		return nil, err
	}
	return &promo, nil
}

// parsePromoUpdate collects the provided /update-promo options
func parsePromoUpdate(opts []*discordgo.ApplicationCommandInteractionDataOption) entities.PromoUpdate {
	m := newOptionMap(opts)
	update := entities.PromoUpdate{
		Emoji:             m.stringPtr("emoji"),
		EmojiName:         m.stringPtr("emoji_name"),
		Prize:             m.stringPtr("prize"),
		ImageURL:          m.stringPtr("image_url"),
		EligibilityRoleID: m.rolePtr("role"),
	}

	for name, dst := range map[string]**entities.Rate{
		"catch_rate":  &update.CatchRate,
		"battle_rate": &update.BattleRate,
		"fish_rate":   &update.FishRate,
	} {
		if v := m.intPtr(name); v != nil {
			r := entities.Rate(*v)
			*dst = &r
		}
	}
	if v := m.intPtr("number_before_claim"); v != nil {
		n := int(*v)
		update.NumberBeforeClaim = &n
	}
	return update
}

// parseGivePlushie reads the /give-plushie options
func parseGivePlushie(opts []*discordgo.ApplicationCommandInteractionDataOption) (int64, entities.DropMethod, *int, error) {
	m := newOptionMap(opts)
	userID := m.userID("user")
	if userID == 0 {
		return 0, "", nil, errors.New("a user is required")
	}

	methodOpt := m.stringPtr("method")
	if methodOpt == nil {
		return 0, "", nil, errors.New("a method is required")
	}
	method, err := entities.ParseDropMethod(*methodOpt)
	if err != nil {
		return 0, "", nil, err
	}

	var day *int
	if v := m.intPtr("day"); v != nil {
		if *v < 1 {
			return 0, "", nil, fmt.Errorf("day must be at least 1, got %d", *v)
		}
		d := int(*v)
		day = &d
	}
	return userID, method, day, nil
}

// IsStaff reports whether an interaction member may run staff commands
func IsStaff(member *discordgo.Member, staffRoleIDs []int64) bool {
	if member == nil {
		return false
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, r := range common.ParseIDs(member.Roles) {
		for _, staff := range staffRoleIDs {
			if r == staff {
				return true
			}
		}
	}
	return false
}
