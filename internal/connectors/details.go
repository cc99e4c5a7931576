package connectors

import "strings"

type detailRule struct {
	target  string
	sources []string
	// connKeys are connection-string keys consulted when no source is set.
	connKeys []string
}

var (
	sqlRules = []detailRule{
		{target: "server", sources: []string{"server"}, connKeys: []string{"data source", "server", "address", "addr"}},
		{target: "database", sources: []string{"database"}, connKeys: []string{"initial catalog", "database"}},
	}
	storageRules = []detailRule{
		{target: "url", sources: []string{"url", "serviceEndpoint", "sasUri"}},
		{target: "accountName", sources: []string{"accountName"}, connKeys: []string{"accountname"}},
	}
	urlRules = []detailRule{
		{target: "url", sources: []string{"url"}},
	}
)

// detailRules lists, per Fabric connection type, the typeProperties that carry
// over into connection details.
var detailRules = map[string][]detailRule{
	"SQL": sqlRules,
	"PostgreSQL": {
		{target: "server", sources: []string{"server", "host"}, connKeys: []string{"host", "server"}},
		{target: "database", sources: []string{"database"}, connKeys: []string{"database"}},
	},
	"MySql": {
		{target: "server", sources: []string{"server", "host"}, connKeys: []string{"server", "host"}},
		{target: "database", sources: []string{"database"}, connKeys: []string{"database"}},
	},
	"Oracle": {
		{target: "server", sources: []string{"server", "host"}, connKeys: []string{"host"}},
		{target: "database", sources: []string{"sid", "serviceName"}, connKeys: []string{"sid", "servicename"}},
	},
	"DB2": {
		{target: "server", sources: []string{"server"}},
		{target: "database", sources: []string{"database"}},
	},
	"Teradata":             {{target: "server", sources: []string{"server"}}},
	"SapHana":              {{target: "server", sources: []string{"server"}}},
	"AzureBlobs":           storageRules,
	"AzureDataLakeStorage": storageRules,
	"AzureFiles":           storageRules,
	"AzureTables":          storageRules,
	"Web":                  urlRules,
	"RestService":          urlRules,
	"OData":                urlRules,
	"Folder": {
		{target: "path", sources: []string{"host"}},
	},
	"SFTP": {
		{target: "host", sources: []string{"host"}},
		{target: "port", sources: []string{"port"}},
	},
	"FTP": {
		{target: "host", sources: []string{"host"}},
		{target: "port", sources: []string{"port"}},
	},
	"Snowflake": {
		{target: "account", sources: []string{"accountIdentifier"}},
		{target: "database", sources: []string{"database"}},
		{target: "warehouse", sources: []string{"warehouse"}},
	},
	"AmazonS3": {
		{target: "serviceUrl", sources: []string{"serviceUrl"}},
	},
	"AzureDatabricks": {
		{target: "domain", sources: []string{"domain"}},
		{target: "clusterId", sources: []string{"existingClusterId"}},
	},
	"AzureDataExplorer": {
		{target: "endpoint", sources: []string{"endpoint"}},
		{target: "database", sources: []string{"database"}},
	},
	"CosmosDB": {
		{target: "accountEndpoint", sources: []string{"accountEndpoint"}},
		{target: "database", sources: []string{"database"}},
	},
	"AzureFunction": {
		{target: "functionAppUrl", sources: []string{"functionAppUrl"}},
	},
}

// BuildConnectionDetailsFromADF extracts the typeProperties that matter for
// a Fabric connection of fabricType. Fields without a rule are dropped.
func BuildConnectionDetailsFromADF(fabricType string, linkedService map[string]any) map[string]any {
	out := map[string]any{}
	rules, ok := detailRules[fabricType]
	if !ok {
		return out
	}
	tp := typeProperties(linkedService)
	if tp == nil {
		return out
	}

	var conn map[string]string
	for _, rule := range rules {
		if v, ok := firstScalar(tp, rule.sources); ok {
			out[rule.target] = v
			continue
		}
		if len(rule.connKeys) == 0 {
			continue
		}
		if conn == nil {
			raw, _ := tp["connectionString"].(string)
			conn = parseConnectionString(raw)
		}
		for _, key := range rule.connKeys {
			if v, ok := conn[key]; ok && v != "" {
				out[rule.target] = v
				break
			}
		}
	}
	return out
}

func typeProperties(linkedService map[string]any) map[string]any {
	if linkedService == nil {
		return nil
	}
	if tp, ok := linkedService["typeProperties"].(map[string]any); ok {
		return tp
	}
	if props, ok := linkedService["properties"].(map[string]any); ok {
		if tp, ok := props["typeProperties"].(map[string]any); ok {
			return tp
		}
	}
	return nil
}

// firstScalar returns the first source key holding a string or number.
// Secure strings and Key Vault references are objects and are skipped.
func firstScalar(tp map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		switch v := tp[k].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v, true
			}
		case int64, float64, int:
			return v, true
		}
	}
	return nil, false
}

// parseConnectionString splits "Key=Value;Key2=Value2" into lower-cased keys.
func parseConnectionString(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}
