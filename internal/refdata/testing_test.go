package refdata

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves a single-sheet workbook with the given cells.
func writeWorkbook(t *testing.T, path string, cells map[string]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for cell, value := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, value))
	}
	require.NoError(t, f.SaveAs(path))
}

// writeReferenceSet writes a small but complete set of reference workbooks.
func writeReferenceSet(t *testing.T, dir string) Sources {
	t.Helper()

	src := Sources{
		DataFile:     filepath.Join(dir, "Data.xlsx"),
		ProductFile:  filepath.Join(dir, "MaHH.xlsx"),
		CustomerFile: filepath.Join(dir, "DSKH.xlsx"),
	}

	writeWorkbook(t, src.DataFile, map[string]interface{}{
		"E2": "Xăng E5 RON 92-II",
		"F2": "Xăng RON 95-III",
		"G2": "Dầu DO 0,05S-II",
		"H2": "Dầu DO 0,001S-V",
		"I2": "Dầu mỡ nhờn",

		"D3": "Trạm 1", "E3": "VV92", "F3": "VV95", "G3": "VV05", "H3": "VV001", "I3": "VVNH",
		"J3": "K01", "K3": "1C24TAA", "L3": "V1",

		"D4": " Nguyễn  Huệ ", "E4": "HN92", "F4": "HN95", "I4": "HNNH",
		"J4": "K02", "K4": "1C24THN", "L4": "V2",

		"D5": "Trạm 3", "J5": "K03",

		"A10": "Xăng E5 RON 92-II", "B10": 1900,
		"A11": "Xăng RON 95-III", "B11": 1900,
		"A12": "Dầu DO 0,05S-II", "B12": 950,
		"A13": "Dầu DO 0,001S-V", "B13": 950.5,

		"A29": "V1", "B29": "1311",
		"A30": "V2", "B30": "1312",
		"A33": "V1", "B33": "5111",
		"A34": "V2", "B34": "5112",
		"B36": "632",
		"A38": "V1", "B38": "33311",
		"A39": "V2", "B39": "33312",

		"A44": "V1", "B44": "1311",
		"A48": "V1", "B48": "5113",
		"B51": "632",
		"A53": "V1", "B53": "33381",
	})

	writeWorkbook(t, src.ProductFile, map[string]interface{}{
		"A1": "Tên hàng", "C1": "Mã hàng",
		"A2": "Xăng RON 95-III", "C2": "X95",
		"A3": "Dầu DO 0,05S-II", "C3": "DO05",
		"A4": "Hàng không mã",
	})

	writeWorkbook(t, src.CustomerFile, map[string]interface{}{
		"C1": "MST", "D1": "Mã KH",
		"C2": "'0301234567", "D2": "KH0301",
		"C3": "0309999999",
	})

	return src
}
