// Package entity 定义领域实体
package entity

// MotifCategory 主题类别
type MotifCategory string

// 全部主题类别，按叙事色调分为暗色、亮色与中性三组
const (
	// 暗色主题
	CategoryBetrayal   MotifCategory = "BETRAYAL"
	CategoryChaos      MotifCategory = "CHAOS"
	CategoryCollapse   MotifCategory = "COLLAPSE"
	CategoryCorruption MotifCategory = "CORRUPTION"
	CategoryDeath      MotifCategory = "DEATH"
	CategoryDeception  MotifCategory = "DECEPTION"
	CategoryDespair    MotifCategory = "DESPAIR"
	CategoryFear       MotifCategory = "FEAR"
	CategoryFutility   MotifCategory = "FUTILITY"
	CategoryGreed      MotifCategory = "GREED"
	CategoryGrief      MotifCategory = "GRIEF"
	CategoryGuilt      MotifCategory = "GUILT"
	CategoryIsolation  MotifCategory = "ISOLATION"
	CategoryMadness    MotifCategory = "MADNESS"
	CategoryObsession  MotifCategory = "OBSESSION"
	CategoryParanoia   MotifCategory = "PARANOIA"
	CategoryRegret     MotifCategory = "REGRET"
	CategoryTemptation MotifCategory = "TEMPTATION"
	CategoryVengeance  MotifCategory = "VENGEANCE"
	CategoryWar        MotifCategory = "WAR"

	// 亮色主题
	CategoryCourage    MotifCategory = "COURAGE"
	CategoryFaith      MotifCategory = "FAITH"
	CategoryFreedom    MotifCategory = "FREEDOM"
	CategoryHarmony    MotifCategory = "HARMONY"
	CategoryHonor      MotifCategory = "HONOR"
	CategoryHope       MotifCategory = "HOPE"
	CategoryInnocence  MotifCategory = "INNOCENCE"
	CategoryJustice    MotifCategory = "JUSTICE"
	CategoryLoyalty    MotifCategory = "LOYALTY"
	CategoryMercy      MotifCategory = "MERCY"
	CategoryPeace      MotifCategory = "PEACE"
	CategoryProtection MotifCategory = "PROTECTION"
	CategoryRebirth    MotifCategory = "REBIRTH"
	CategoryRedemption MotifCategory = "REDEMPTION"
	CategoryUnity      MotifCategory = "UNITY"

	// 中性主题
	CategoryAscension      MotifCategory = "ASCENSION"
	CategoryCompulsion     MotifCategory = "COMPULSION"
	CategoryControl        MotifCategory = "CONTROL"
	CategoryDefiance       MotifCategory = "DEFIANCE"
	CategoryDesire         MotifCategory = "DESIRE"
	CategoryDestiny        MotifCategory = "DESTINY"
	CategoryEcho           MotifCategory = "ECHO"
	CategoryMystery        MotifCategory = "MYSTERY"
	CategoryPower          MotifCategory = "POWER"
	CategoryPride          MotifCategory = "PRIDE"
	CategoryRevelation     MotifCategory = "REVELATION"
	CategorySacrifice      MotifCategory = "SACRIFICE"
	CategoryTransformation MotifCategory = "TRANSFORMATION"
	CategoryTruth          MotifCategory = "TRUTH"
)

// darkCategories 暗色主题集合
var darkCategories = map[MotifCategory]bool{
	CategoryBetrayal: true, CategoryChaos: true, CategoryCollapse: true,
	CategoryCorruption: true, CategoryDeath: true, CategoryDeception: true,
	CategoryDespair: true, CategoryFear: true, CategoryFutility: true,
	CategoryGreed: true, CategoryGrief: true, CategoryGuilt: true,
	CategoryIsolation: true, CategoryMadness: true, CategoryObsession: true,
	CategoryParanoia: true, CategoryRegret: true, CategoryTemptation: true,
	CategoryVengeance: true, CategoryWar: true,
}

// lightCategories 亮色主题集合
var lightCategories = map[MotifCategory]bool{
	CategoryCourage: true, CategoryFaith: true, CategoryFreedom: true,
	CategoryHarmony: true, CategoryHonor: true, CategoryHope: true,
	CategoryInnocence: true, CategoryJustice: true, CategoryLoyalty: true,
	CategoryMercy: true, CategoryPeace: true, CategoryProtection: true,
	CategoryRebirth: true, CategoryRedemption: true, CategoryUnity: true,
}

// neutralCategories 中性主题集合
var neutralCategories = map[MotifCategory]bool{
	CategoryAscension: true, CategoryCompulsion: true, CategoryControl: true,
	CategoryDefiance: true, CategoryDesire: true, CategoryDestiny: true,
	CategoryEcho: true, CategoryMystery: true, CategoryPower: true,
	CategoryPride: true, CategoryRevelation: true, CategorySacrifice: true,
	CategoryTransformation: true, CategoryTruth: true,
}

// AllCategories 返回全部类别（暗色、亮色、中性的并集）
func AllCategories() []MotifCategory {
	out := make([]MotifCategory, 0, len(darkCategories)+len(lightCategories)+len(neutralCategories))
	for _, set := range []map[MotifCategory]bool{darkCategories, lightCategories, neutralCategories} {
		for c := range set {
			out = append(out, c)
		}
	}
	return out
}

// IsValid 检查类别是否合法
func (c MotifCategory) IsValid() bool {
	return darkCategories[c] || lightCategories[c] || neutralCategories[c]
}

// IsDark 是否为暗色主题
func (c MotifCategory) IsDark() bool {
	return darkCategories[c]
}

// IsLight 是否为亮色主题
func (c MotifCategory) IsLight() bool {
	return lightCategories[c]
}

// Tone 类别对应的叙事基调
func (c MotifCategory) Tone() string {
	switch {
	case darkCategories[c]:
		return "dark"
	case lightCategories[c]:
		return "light"
	default:
		return "neutral"
	}
}
