/*
rates2025.go - Published CRA constants for the 2025 tax year

Values follow the CRA T4127 Payroll Deductions Formulas (2025 edition).
The table is data only; validation and lookup live in ratetable.go.
*/
package payroll

import "github.com/shopspring/decimal"

// Rates2025 returns the validated rate table for tax year 2025.
// The data is internally consistent, so construction cannot fail.
func Rates2025() *RateTable {
	table, err := NewRateTable(rates2025Config())
	if err != nil {
		panic("payroll: 2025 rate table invalid: " + err.Error())
	}
	return table
}

func rates2025Config() RateTableConfig {
	return RateTableConfig{
		TaxYear: 2025,

		CPPRate:            d("0.0595"),
		CPPBasicExemption:  d("3500"),
		CPPYMPE:            d("71300"),
		CPPMaxContribution: d("4034.10"),

		CPP2Rate:            d("0.04"),
		CPP2YAMPE:           d("81200"),
		CPP2MaxContribution: d("396.00"),

		EIRate:             d("0.0164"),
		EIRateQuebec:       d("0.0127"),
		EIMaxInsurable:     d("65700"),
		EIMaxPremium:       d("1077.48"),
		EIMaxPremiumQuebec: d("834.39"),

		QPIPRate:         d("0.00494"),
		QPIPMaxInsurable: d("94000"),

		FederalCreditRate: d("0.15"),
		FederalBPA:        d("15705"),

		FederalBrackets: brackets(
			row("0", "55867", "0.15"),
			row("55867", "111733", "0.205"),
			row("111733", "173205", "0.26"),
			row("173205", "246752", "0.29"),
			open("246752", "0.33"),
		),

		ProvincialBrackets: map[Province][]BracketRow{
			Alberta: brackets(
				row("0", "148269", "0.10"),
				row("148269", "177922", "0.12"),
				row("177922", "237230", "0.13"),
				row("237230", "355845", "0.14"),
				open("355845", "0.15"),
			),
			BritishColumbia: brackets(
				row("0", "47937", "0.0506"),
				row("47937", "95875", "0.077"),
				row("95875", "110076", "0.105"),
				row("110076", "133664", "0.1229"),
				row("133664", "181232", "0.147"),
				row("181232", "252752", "0.168"),
				open("252752", "0.205"),
			),
			Manitoba: brackets(
				row("0", "47000", "0.108"),
				row("47000", "100000", "0.1275"),
				open("100000", "0.174"),
			),
			NewBrunswick: brackets(
				row("0", "49958", "0.094"),
				row("49958", "99916", "0.14"),
				row("99916", "185064", "0.16"),
				open("185064", "0.195"),
			),
			NewfoundlandLabrador: brackets(
				row("0", "43198", "0.087"),
				row("43198", "86395", "0.145"),
				row("86395", "154244", "0.158"),
				row("154244", "215943", "0.178"),
				row("215943", "275870", "0.198"),
				row("275870", "551739", "0.208"),
				row("551739", "1103478", "0.213"),
				open("1103478", "0.218"),
			),
			NovaScotia: brackets(
				row("0", "29590", "0.0879"),
				row("29590", "59180", "0.1495"),
				row("59180", "93000", "0.1667"),
				row("93000", "150000", "0.175"),
				open("150000", "0.21"),
			),
			NorthwestTerritories: brackets(
				row("0", "50597", "0.059"),
				row("50597", "101198", "0.086"),
				row("101198", "164525", "0.122"),
				open("164525", "0.1405"),
			),
			Nunavut: brackets(
				row("0", "53268", "0.04"),
				row("53268", "106537", "0.07"),
				row("106537", "173205", "0.09"),
				open("173205", "0.115"),
			),
			Ontario: brackets(
				row("0", "51446", "0.0505"),
				row("51446", "102894", "0.0915"),
				row("102894", "150000", "0.1116"),
				row("150000", "220000", "0.1216"),
				open("220000", "0.1316"),
			),
			PrinceEdwardIsland: brackets(
				row("0", "32656", "0.098"),
				row("32656", "64313", "0.138"),
				open("64313", "0.167"),
			),
			Quebec: brackets(
				row("0", "51780", "0.14"),
				row("51780", "103545", "0.19"),
				row("103545", "126000", "0.24"),
				open("126000", "0.2575"),
			),
			Saskatchewan: brackets(
				row("0", "52057", "0.105"),
				row("52057", "148734", "0.125"),
				open("148734", "0.145"),
			),
			Yukon: brackets(
				row("0", "55867", "0.064"),
				row("55867", "111733", "0.09"),
				row("111733", "173205", "0.109"),
				row("173205", "500000", "0.128"),
				open("500000", "0.15"),
			),
		},

		ProvincialBPA: map[Province]decimal.Decimal{
			Alberta:              d("21885"),
			BritishColumbia:      d("12580"),
			Manitoba:             d("10855"),
			NewBrunswick:         d("13044"),
			NewfoundlandLabrador: d("10382"),
			NovaScotia:           d("8744"),
			NorthwestTerritories: d("16593"),
			Nunavut:              d("17925"),
			Ontario:              d("11865"),
			PrinceEdwardIsland:   d("13500"),
			Quebec:               d("18056"),
			Saskatchewan:         d("18491"),
			Yukon:                d("15705"),
		},

		ClaimCodeExemptions: map[int]decimal.Decimal{
			0:  d("0"),
			1:  d("15705"),
			2:  d("31410"),
			3:  d("47115"),
			4:  d("62820"),
			5:  d("78525"),
			6:  d("94230"),
			7:  d("109935"),
			8:  d("125640"),
			9:  d("141345"),
			10: d("157050"),
		},
	}
}

// row builds a closed bracket band [min, max).
func row(min, max, rate string) BracketRow {
	upper := d(max)
	return BracketRow{Min: d(min), Max: &upper, Rate: d(rate)}
}

// open builds the final, open-ended bracket band.
func open(min, rate string) BracketRow {
	return BracketRow{Min: d(min), Rate: d(rate)}
}

func brackets(rows ...BracketRow) []BracketRow { return rows }
