package cnj

const aliasPrefix = "api_publica_"

// tribunais mapeia o código de roteamento (segmento.tribunal) para o índice do DataJud
var tribunais = map[string]string{
	// Tribunais superiores e conselhos
	"1.00": "stf",
	"2.00": "cnj",
	"3.00": "stj",
	"6.00": "tse",
	"7.00": "stm",

	// Justiça Federal
	"4.01": "trf1",
	"4.02": "trf2",
	"4.03": "trf3",
	"4.04": "trf4",
	"4.05": "trf5",
	"4.06": "trf6",

	// Justiça do Trabalho
	"5.01": "trt1",
	"5.02": "trt2",
	"5.03": "trt3",
	"5.04": "trt4",
	"5.05": "trt5",
	"5.06": "trt6",
	"5.07": "trt7",
	"5.08": "trt8",
	"5.09": "trt9",
	"5.10": "trt10",
	"5.11": "trt11",
	"5.12": "trt12",
	"5.13": "trt13",
	"5.14": "trt14",
	"5.15": "trt15",
	"5.16": "trt16",
	"5.17": "trt17",
	"5.18": "trt18",
	"5.19": "trt19",
	"5.20": "trt20",
	"5.21": "trt21",
	"5.22": "trt22",
	"5.23": "trt23",
	"5.24": "trt24",

	// Justiça Estadual
	"8.01": "tjac",
	"8.02": "tjal",
	"8.03": "tjap",
	"8.04": "tjam",
	"8.05": "tjba",
	"8.06": "tjce",
	"8.07": "tjdft",
	"8.08": "tjes",
	"8.09": "tjgo",
	"8.10": "tjma",
	"8.11": "tjmt",
	"8.12": "tjms",
	"8.13": "tjmg",
	"8.14": "tjpa",
	"8.15": "tjpb",
	"8.16": "tjpr",
	"8.17": "tjpe",
	"8.18": "tjpi",
	"8.19": "tjrj",
	"8.20": "tjrn",
	"8.21": "tjrs",
	"8.22": "tjro",
	"8.23": "tjrr",
	"8.24": "tjsc",
	"8.25": "tjse",
	"8.26": "tjsp",
	"8.27": "tjto",
}

// Tribunal retorna o alias do índice DataJud para um código de roteamento
func Tribunal(code string) (string, bool) {
	sigla, ok := tribunais[code]
	if !ok {
		return "", false
	}
	return aliasPrefix + sigla, true
}

// Alias resolve diretamente o alias DataJud de um número de processo
func Alias(raw string) (string, bool) {
	code, ok := RoutingCode(raw)
	if !ok {
		return "", false
	}
	return Tribunal(code)
}
