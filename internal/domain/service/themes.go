// Package service 提供主题领域的规则表与派生逻辑
package service

import (
	"fmt"
	"math/rand"
	"strings"

	"rpg-motif-api/internal/domain/entity"
)

// opposingCategories 对立类别映射，对称维护
var opposingCategories = map[entity.MotifCategory][]entity.MotifCategory{
	entity.CategoryHope:       {entity.CategoryDespair},
	entity.CategoryDespair:    {entity.CategoryHope},
	entity.CategoryPeace:      {entity.CategoryWar, entity.CategoryChaos},
	entity.CategoryWar:        {entity.CategoryPeace, entity.CategoryHarmony},
	entity.CategoryChaos:      {entity.CategoryPeace, entity.CategoryHarmony, entity.CategoryControl},
	entity.CategoryHarmony:    {entity.CategoryChaos, entity.CategoryWar},
	entity.CategoryTruth:      {entity.CategoryDeception},
	entity.CategoryDeception:  {entity.CategoryTruth, entity.CategoryHonor},
	entity.CategoryHonor:      {entity.CategoryDeception},
	entity.CategoryLoyalty:    {entity.CategoryBetrayal},
	entity.CategoryBetrayal:   {entity.CategoryLoyalty},
	entity.CategoryJustice:    {entity.CategoryCorruption},
	entity.CategoryCorruption: {entity.CategoryJustice},
	entity.CategoryMercy:      {entity.CategoryVengeance},
	entity.CategoryVengeance:  {entity.CategoryMercy},
	entity.CategoryCourage:    {entity.CategoryFear},
	entity.CategoryFear:       {entity.CategoryCourage},
	entity.CategoryFreedom:    {entity.CategoryControl},
	entity.CategoryControl:    {entity.CategoryFreedom, entity.CategoryChaos},
	entity.CategoryInnocence:  {entity.CategoryTemptation, entity.CategoryCorruption},
	entity.CategoryTemptation: {entity.CategoryInnocence},
	entity.CategoryUnity:      {entity.CategoryIsolation},
	entity.CategoryIsolation:  {entity.CategoryUnity},
	entity.CategoryRebirth:    {entity.CategoryDeath},
	entity.CategoryDeath:      {entity.CategoryRebirth},
	entity.CategoryRedemption: {entity.CategoryGuilt},
	entity.CategoryGuilt:      {entity.CategoryRedemption},
	entity.CategoryFaith:      {entity.CategoryFutility},
	entity.CategoryFutility:   {entity.CategoryFaith},
}

// AreOpposing 判断两个类别是否对立
func AreOpposing(a, b entity.MotifCategory) bool {
	for _, o := range opposingCategories[a] {
		if o == b {
			return true
		}
	}
	return false
}

// OpposingOf 返回类别的全部对立类别
func OpposingOf(c entity.MotifCategory) []entity.MotifCategory {
	return opposingCategories[c]
}

// 名称生成用的形容词表，按基调分组
var (
	darkAdjectives    = []string{"Creeping", "Smoldering", "Shattered", "Hollow", "Festering", "Drowning", "Bleeding", "Silent"}
	lightAdjectives   = []string{"Rising", "Enduring", "Radiant", "Unbroken", "Kindled", "Steadfast", "Gentle", "Blazing"}
	neutralAdjectives = []string{"Shifting", "Veiled", "Ancient", "Turning", "Wandering", "Echoing", "Boundless", "Quiet"}
)

// 名称生成用的作用域名词表
var scopeNouns = map[entity.MotifScope][]string{
	entity.ScopeGlobal:          {"World", "Age", "Realm", "Horizon"},
	entity.ScopeRegional:        {"Province", "Borderlands", "Valley", "Dominion"},
	entity.ScopeLocal:           {"Crossroads", "Hearth", "Hollow", "Square"},
	entity.ScopePlayerCharacter: {"Heart", "Path", "Shadow", "Burden"},
}

// GenerateName 由类别与作用域生成主题名称
func GenerateName(rng *rand.Rand, category entity.MotifCategory, scope entity.MotifScope) string {
	var adjectives []string
	switch category.Tone() {
	case "dark":
		adjectives = darkAdjectives
	case "light":
		adjectives = lightAdjectives
	default:
		adjectives = neutralAdjectives
	}
	adj := adjectives[rng.Intn(len(adjectives))]
	nouns := scopeNouns[scope]
	if len(nouns) == 0 {
		nouns = scopeNouns[entity.ScopeGlobal]
	}
	noun := nouns[rng.Intn(len(nouns))]
	return fmt.Sprintf("%s %s of the %s", adj, titleWord(string(category)), noun)
}

// GenerateDescription 由类别与强度生成主题描述
func GenerateDescription(category entity.MotifCategory, intensity float64) string {
	word := strings.ToLower(string(category))
	return fmt.Sprintf("A %s undercurrent of %s colors events within its reach.",
		entity.IntensityDescriptor(intensity), word)
}

// ThemeFor 类别对应的主题语
func ThemeFor(category entity.MotifCategory) string {
	return strings.ToLower(string(category))
}

// NarrativeDirectionFor 类别与强度对应的叙事走向
func NarrativeDirectionFor(category entity.MotifCategory, intensity float64) string {
	word := strings.ToLower(string(category))
	switch {
	case intensity >= 7:
		return fmt.Sprintf("events bend inexorably toward %s", word)
	case intensity >= 4:
		return fmt.Sprintf("a current of %s runs beneath unfolding events", word)
	default:
		return fmt.Sprintf("faint traces of %s linger at the edges of the story", word)
	}
}

// GenerateDescriptors 由类别与强度派生描述词
func GenerateDescriptors(category entity.MotifCategory, intensity float64) []string {
	return []string{
		strings.ToLower(string(category)),
		entity.IntensityDescriptor(intensity),
		category.Tone(),
	}
}

// DurationDays 按作用域与强度推导主题时长（天）。
// 作用域越大、强度越高，主题存续越久。
func DurationDays(rng *rand.Rand, scope entity.MotifScope, intensity float64) int {
	var base, spread int
	switch scope {
	case entity.ScopeGlobal:
		base, spread = 30, 60
	case entity.ScopeRegional:
		base, spread = 14, 28
	case entity.ScopeLocal:
		base, spread = 5, 10
	case entity.ScopePlayerCharacter:
		base, spread = 7, 14
	default:
		base, spread = 7, 14
	}
	scaled := base + int(float64(spread)*(intensity/entity.MaxIntensity))
	return base + rng.Intn(scaled-base+1)
}

// ChaosEvents 混沌叙事事件表，供高强度 CHAOS 语境的引导载荷使用
var ChaosEvents = []string{
	"A trusted ally acts against their own stated interests.",
	"Weather turns violently without warning.",
	"A message arrives that contradicts known facts.",
	"Two unrelated factions clash in the streets.",
	"A landmark is found altered overnight.",
	"Livestock and animals flee the area en masse.",
	"A stranger knows details they could not possibly know.",
	"Prices in the local market triple within a day.",
	"A long-sealed door stands open.",
	"An official decree is rescinded hours after issue.",
	"Someone presumed dead is seen alive.",
	"A fire starts with no discernible source.",
	"Maps of the area no longer match the terrain.",
	"A festival erupts spontaneously amid crisis.",
	"Guards abandon their posts without explanation.",
	"An heirloom goes missing from a locked vault.",
	"Identical twins appear where there was one person.",
	"The same rumor surfaces in three distant places at once.",
	"A well-known road now leads somewhere else.",
	"Bells ring from a tower that has no bell.",
}

// ChaosEventFor 为给定序号返回混沌事件，序号取模
func ChaosEventFor(n int) string {
	if n < 0 {
		n = -n
	}
	return ChaosEvents[n%len(ChaosEvents)]
}

// titleWord 单词首字母大写
func titleWord(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
