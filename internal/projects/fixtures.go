package projects

import "time"

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Fixtures returns the demo project catalogue used by the in-memory data
// source and the seed script.
func Fixtures() []Project {
	return []Project{
		{
			ID: "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa", Name: "Centro Storico Arezzo", Code: "L25-0005-xaef43",
			Address: "Piazza Grande, 52100 Arezzo (AR), Italia", Coordinates: Coordinates{43.4648, 11.8846},
			StructureType: "Edificio in muratura", DestinationUse: "Residenziale", ConstructionYear: 1850, SeismicZone: 2,
			EstimatedValue: 1000000, FloorArea: 450.5, RiskClass: "C", Status: StatusMonitoring,
			OwnerID: "33333333-3333-3333-3333-333333333333", SensorCount: 15, ActiveSensors: 15, AlarmsCount: 2,
			CreatedAt: day("2024-12-01"), UpdatedAt: day("2024-12-01"),
		},
		{
			ID: "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb", Name: "Condominio Verdi", Code: "L25-0006-d0323",
			Address: "Via Giotto, 15, 52100 Arezzo (AR), Italia", Coordinates: Coordinates{43.4598, 11.8756},
			StructureType: "Edificio in cemento armato", DestinationUse: "Residenziale", ConstructionYear: 1975, SeismicZone: 2,
			EstimatedValue: 400000, FloorArea: 800, RiskClass: "B", Status: StatusPlanning,
			OwnerID: "33333333-3333-3333-3333-333333333334", SensorCount: 8,
			CreatedAt: day("2024-11-20"), UpdatedAt: day("2024-11-20"),
		},
		{
			ID: "cccccccc-cccc-cccc-cccc-cccccccccccc", Name: "Palazzo Uffici Milano", Code: "L25-0007-mi001",
			Address: "Via Brera, 10, 20121 Milano (MI), Italia", Coordinates: Coordinates{45.4719, 9.1859},
			StructureType: "Edificio in cemento armato", DestinationUse: "Uffici", ConstructionYear: 1985, SeismicZone: 3,
			EstimatedValue: 2500000, FloorArea: 1200, RiskClass: "A", Status: StatusMonitoring,
			OwnerID: "33333333-3333-3333-3333-333333333333", SensorCount: 22, ActiveSensors: 22,
			CreatedAt: day("2024-11-15"), UpdatedAt: day("2024-11-15"),
		},
		{
			ID: "dddddddd-dddd-dddd-dddd-dddddddddddd", Name: "Scuola Elementare Firenze", Code: "L25-0008-fi001",
			Address: "Via Dante Alighieri, 25, 50122 Firenze (FI), Italia", Coordinates: Coordinates{43.7696, 11.2558},
			StructureType: "Edificio in cemento armato", DestinationUse: "Scolastico", ConstructionYear: 1968, SeismicZone: 3,
			EstimatedValue: 800000, FloorArea: 1800, RiskClass: "B", Status: StatusMonitoring,
			OwnerID: "33333333-3333-3333-3333-333333333335", SensorCount: 8, ActiveSensors: 7, AlarmsCount: 1,
			CreatedAt: day("2024-10-10"), UpdatedAt: day("2024-10-10"),
		},
		{
			ID: "eeeeeeee-eeee-eeee-eeee-eeeeeeeeeeee", Name: "Ospedale Regionale Siena", Code: "L25-0009-si001",
			Address: "Viale Mario Bracci, 16, 53100 Siena (SI), Italia", Coordinates: Coordinates{43.3188, 11.3307},
			StructureType: "Edificio in cemento armato", DestinationUse: "Sanitario", ConstructionYear: 1995, SeismicZone: 3,
			EstimatedValue: 15000000, FloorArea: 8500, RiskClass: "A", Status: StatusMonitoring,
			OwnerID: "33333333-3333-3333-3333-333333333336", SensorCount: 15, ActiveSensors: 14,
			CreatedAt: day("2024-09-15"), UpdatedAt: day("2024-09-15"),
		},
		{
			ID: "ffffffff-ffff-ffff-ffff-ffffffffffff", Name: "Chiesa di San Miniato", Code: "L25-0010-sg001",
			Address: "Piazza del Duomo, 2, 53037 San Gimignano (SI), Italia", Coordinates: Coordinates{43.4674, 11.0431},
			StructureType: "Edificio storico-monumentale", DestinationUse: "Pubblico", ConstructionYear: 1200, SeismicZone: 3,
			EstimatedValue: 5000000, FloorArea: 650, RiskClass: "D", Status: StatusMonitoring,
			OwnerID: "33333333-3333-3333-3333-333333333337", SensorCount: 6, ActiveSensors: 5, AlarmsCount: 3,
			CreatedAt: day("2024-08-20"), UpdatedAt: day("2024-08-20"),
		},
		{
			ID: "gggggggg-gggg-gggg-gggg-gggggggggggg", Name: "Torre Uffici Roma", Code: "L25-0011-rm001",
			Address: "Via del Corso, 300, 00186 Roma (RM), Italia", Coordinates: Coordinates{41.9028, 12.4814},
			StructureType: "Edificio in cemento armato", DestinationUse: "Uffici", ConstructionYear: 2010, SeismicZone: 3,
			EstimatedValue: 8500000, FloorArea: 2200, RiskClass: "A", Status: StatusMonitoring,
			OwnerID: "33333333-3333-3333-3333-333333333338", SensorCount: 12, ActiveSensors: 12,
			CreatedAt: day("2024-07-10"), UpdatedAt: day("2024-07-10"),
		},
		{
			ID: "hhhhhhhh-hhhh-hhhh-hhhh-hhhhhhhhhhhh", Name: "Stabilimento Industriale Prato", Code: "L25-0012-po001",
			Address: "Via dell'Industria, 45, 59100 Prato (PO), Italia", Coordinates: Coordinates{43.8777, 11.0948},
			StructureType: "Prefabbricato", DestinationUse: "Industriale", ConstructionYear: 1988, SeismicZone: 3,
			EstimatedValue: 1200000, FloorArea: 3500, RiskClass: "C", Status: StatusInstallation,
			OwnerID: "33333333-3333-3333-3333-333333333335", SensorCount: 4, ActiveSensors: 2, AlarmsCount: 1,
			CreatedAt: day("2024-06-15"), UpdatedAt: day("2024-06-15"),
		},
		{
			ID: "iiiiiiii-iiii-iiii-iiii-iiiiiiiiiiii", Name: "Ponte Autostradale A1", Code: "L25-0013-a1001",
			Address: "Autostrada A1, km 285+400, Arezzo (AR), Italia", Coordinates: Coordinates{43.4123, 11.8234},
			StructureType: "Ponte", DestinationUse: "Pubblico", ConstructionYear: 1975, SeismicZone: 2,
			EstimatedValue: 3500000, FloorArea: 1200, RiskClass: "B", Status: StatusMonitoring,
			OwnerID: "33333333-3333-3333-3333-333333333336", SensorCount: 10, ActiveSensors: 9, AlarmsCount: 2,
			CreatedAt: day("2024-05-20"), UpdatedAt: day("2024-05-20"),
		},
		{
			ID: "jjjjjjjj-jjjj-jjjj-jjjj-jjjjjjjjjjjj", Name: "Condominio Moderno Arezzo", Code: "L25-0014-ar002",
			Address: "Via Fiorentina, 88, 52100 Arezzo (AR), Italia", Coordinates: Coordinates{43.4512, 11.8645},
			StructureType: "Edificio in cemento armato", DestinationUse: "Residenziale", ConstructionYear: 2005, SeismicZone: 2,
			EstimatedValue: 1800000, FloorArea: 1350, RiskClass: "A", Status: StatusPlanning,
			OwnerID:   "33333333-3333-3333-3333-333333333334",
			CreatedAt: day("2024-04-10"), UpdatedAt: day("2024-04-10"),
		},
	}
}
