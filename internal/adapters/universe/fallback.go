package universe

// majorSymbols is the last-resort universe used when every listing source
// fails: large NSE names plus their BSE scrip codes.
var majorSymbols = []string{
	"TCS.NS", "RELIANCE.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS", "KOTAKBANK.NS",
	"HINDUNILVR.NS", "ITC.NS", "SBIN.NS", "BAJFINANCE.NS", "BHARTIARTL.NS", "ASIANPAINT.NS",
	"HCLTECH.NS", "AXISBANK.NS", "LT.NS", "MARUTI.NS", "TITAN.NS", "BAJAJFINSV.NS",
	"SUNPHARMA.NS", "WIPRO.NS", "ADANIPORTS.NS", "ULTRACEMCO.NS", "TECHM.NS", "DIVISLAB.NS",

	"500325.BO", "500570.BO", "500180.BO", "532540.BO", "532174.BO", "500247.BO",
	"500696.BO", "500875.BO", "500112.BO", "532978.BO", "532454.BO", "500820.BO",
}
