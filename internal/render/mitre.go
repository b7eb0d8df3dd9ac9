// Package render turns console API responses into terminal output: tables
// for listings and hits, pretty JSON for opaque shapes, and human-readable
// names for MITRE technique codes.
//
// Rule: code is for machines, words are for humans. Use these functions in
// CLI output and reports; keep raw codes in JSON fields and comparisons.
package render

import "strings"

// Technique names for the ATT&CK codes the triage backend emits most often.
// Not a full catalog; unknown codes pass through unchanged.
var techniques = map[string]string{
	"T1003": "OS Credential Dumping",
	"T1021": "Remote Services",
	"T1027": "Obfuscated Files or Information",
	"T1036": "Masquerading",
	"T1047": "Windows Management Instrumentation",
	"T1053": "Scheduled Task/Job",
	"T1055": "Process Injection",
	"T1059": "Command and Scripting Interpreter",
	"T1070": "Indicator Removal",
	"T1078": "Valid Accounts",
	"T1082": "System Information Discovery",
	"T1105": "Ingress Tool Transfer",
	"T1112": "Modify Registry",
	"T1136": "Create Account",
	"T1140": "Deobfuscate/Decode Files or Information",
	"T1203": "Exploitation for Client Execution",
	"T1486": "Data Encrypted for Impact",
	"T1543": "Create or Modify System Process",
	"T1547": "Boot or Logon Autostart Execution",
	"T1548": "Abuse Elevation Control Mechanism",
	"T1562": "Impair Defenses",
	"T1566": "Phishing",
	"T1569": "System Services",
	"T1570": "Lateral Tool Transfer",
}

// Technique returns the human-readable name for an ATT&CK technique code.
// Sub-technique codes (T1059.001) resolve to their parent name. Unknown
// codes are returned as-is.
func Technique(code string) string {
	if name, ok := techniques[code]; ok {
		return name
	}
	if base, _, ok := strings.Cut(code, "."); ok {
		if name, ok := techniques[base]; ok {
			return name
		}
	}
	return code
}

// TechniqueWithCode returns "OS Credential Dumping (T1003)" format.
func TechniqueWithCode(code string) string {
	name := Technique(code)
	if name == code {
		return code
	}
	return name + " (" + code + ")"
}
