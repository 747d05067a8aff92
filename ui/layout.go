package ui

import (
	"github.com/pthm-cable/cavern/co2"
	"github.com/pthm-cable/cavern/store"
)

// Element ids of the game page.
const (
	IDGameContainer    = "gameContainer"
	IDDungeonMap       = "dungeonMap"
	IDStatsContainer   = "statsContainer"
	IDResourceLevels   = "resourceLevels"
	IDWaterLevel       = "waterLevel"
	IDOxygenLevel      = "oxygenLevel"
	IDCarbonDioxide    = "carbonDioxideLevel"
	IDPopulationLevels = "populationLevels"
	IDAlgae            = "algaePopulation"
	IDMushroom         = "mushroomPopulation"
	IDAddCo2           = "addCo2"
)

// AddCo2Caption is the caption of the CO2 button.
const AddCo2Caption = "Add CO2"

// Layout composes the game page: the dungeon map placeholder, resource and
// population counters, and the CO2 button.
// Only the CO2 counter reads the store; the others still show a fixed 0.
func Layout() *Page {
	p := NewPage()

	p.Container(IDGameContainer, "")
	p.Container(IDDungeonMap, IDGameContainer)
	p.Container(IDStatsContainer, IDGameContainer)

	p.Container(IDResourceLevels, IDStatsContainer)
	p.StaticValue(IDWaterLevel, IDResourceLevels, "Water: ", "0")
	p.StaticValue(IDOxygenLevel, IDResourceLevels, "Oxygen: ", "0")
	p.SelectorValue(IDCarbonDioxide, IDResourceLevels, "CO2: ", co2.Name, co2Level)

	p.Container(IDPopulationLevels, IDStatsContainer)
	p.StaticValue(IDAlgae, IDPopulationLevels, "Algae Population: ", "0")
	p.StaticValue(IDMushroom, IDPopulationLevels, "Mushroom Population: ", "0")

	p.Button(IDAddCo2, IDGameContainer, AddCo2Caption, co2.AddCo2)
	return p
}

func co2Level(st store.State) (any, error) {
	c, err := co2.Select(st)
	if err != nil {
		return nil, err
	}
	return c.Level, nil
}
