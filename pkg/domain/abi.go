package domain

// DefaultDebotABI describes the functions every debot exposes. It is used as the
// self ABI until the debot publishes its own through getDebotOptions.
const DefaultDebotABI = `{
	"ABI version": 2,
	"header": ["time", "expire"],
	"functions": [
		{
			"name": "fetch",
			"inputs": [],
			"outputs": [
				{"components":[
					{"name":"id","type":"uint8"},
					{"name":"desc","type":"bytes"},
					{"components":[
						{"name":"desc","type":"bytes"},
						{"name":"name","type":"bytes"},
						{"name":"actionType","type":"uint8"},
						{"name":"attrs","type":"bytes"},
						{"name":"to","type":"uint8"},
						{"name":"misc","type":"cell"}
					],"name":"actions","type":"tuple[]"}
				],"name":"contexts","type":"tuple[]"}
			]
		},
		{
			"name": "getVersion",
			"inputs": [],
			"outputs": [
				{"name":"name","type":"bytes"},
				{"name":"semver","type":"uint24"}
			]
		},
		{
			"name": "getDebotOptions",
			"inputs": [],
			"outputs": [
				{"name":"options","type":"uint8"},
				{"name":"debotAbi","type":"bytes"},
				{"name":"targetAbi","type":"bytes"},
				{"name":"targetAddr","type":"address"}
			]
		},
		{
			"name": "getErrorDescription",
			"inputs": [
				{"name":"error","type":"uint32"}
			],
			"outputs": [
				{"name":"desc","type":"bytes"}
			]
		}
	],
	"data": [],
	"events": []
}`
