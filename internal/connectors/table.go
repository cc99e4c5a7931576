package connectors

// directTable holds the well-known ADF linked-service types and the Fabric
// connection type each maps to.
var directTable = mustRegister(NewRegistry(),
	Entry{ADFType: "AzureBlobStorage", FabricType: "AzureBlobs"},
	Entry{ADFType: "AzureBlobFS", FabricType: "AzureDataLakeStorage"},
	Entry{ADFType: "AzureDataLakeStore", FabricType: "AzureDataLakeStorage", Confidence: ConfidenceLow,
		Notes: "Data Lake Storage Gen1 is retired; the connection must point at a Gen2 account"},
	Entry{ADFType: "AzureFileStorage", FabricType: "AzureFiles"},
	Entry{ADFType: "AzureTableStorage", FabricType: "AzureTables"},
	Entry{ADFType: "AzureSqlDatabase", FabricType: "SQL"},
	Entry{ADFType: "AzureSqlMI", FabricType: "SQL"},
	Entry{ADFType: "AzureSqlDW", FabricType: "SQL"},
	Entry{ADFType: "SqlServer", FabricType: "SQL", Gateway: true},
	Entry{ADFType: "AzurePostgreSql", FabricType: "PostgreSQL"},
	Entry{ADFType: "PostgreSql", FabricType: "PostgreSQL", Gateway: true},
	Entry{ADFType: "AzureMySql", FabricType: "MySql"},
	Entry{ADFType: "MySql", FabricType: "MySql", Gateway: true},
	Entry{ADFType: "Oracle", FabricType: "Oracle", Gateway: true},
	Entry{ADFType: "Db2", FabricType: "DB2", Gateway: true},
	Entry{ADFType: "Teradata", FabricType: "Teradata", Gateway: true},
	Entry{ADFType: "SapHana", FabricType: "SapHana", Gateway: true},
	Entry{ADFType: "Odbc", FabricType: "Odbc", Gateway: true},
	Entry{ADFType: "FileServer", FabricType: "Folder", Gateway: true},
	Entry{ADFType: "Hdfs", FabricType: "Hdfs", Gateway: true, Confidence: ConfidenceLow,
		Notes: "HDFS sources are reached through an on-premises data gateway only"},
	Entry{ADFType: "CosmosDb", FabricType: "CosmosDB"},
	Entry{ADFType: "AzureDataExplorer", FabricType: "AzureDataExplorer"},
	Entry{ADFType: "AzureDatabricks", FabricType: "AzureDatabricks", Confidence: ConfidenceLow,
		Notes: "cluster settings are not carried over; configure the workspace connection in Fabric"},
	Entry{ADFType: "AzureFunction", FabricType: "AzureFunction"},
	Entry{ADFType: "RestService", FabricType: "RestService"},
	Entry{ADFType: "HttpServer", FabricType: "Web", Special: true,
		Notes: "HTTP linked services translate to Web connections; authentication must be re-entered"},
	Entry{ADFType: "Web", FabricType: "Web"},
	Entry{ADFType: "OData", FabricType: "OData"},
	Entry{ADFType: "Sftp", FabricType: "SFTP"},
	Entry{ADFType: "FtpServer", FabricType: "FTP"},
	Entry{ADFType: "Snowflake", FabricType: "Snowflake"},
	Entry{ADFType: "SnowflakeV2", FabricType: "Snowflake"},
	Entry{ADFType: "AmazonS3", FabricType: "AmazonS3"},
	Entry{ADFType: "GoogleCloudStorage", FabricType: "GoogleCloudStorage"},
	Entry{ADFType: "Salesforce", FabricType: "Salesforce"},
	Entry{ADFType: "SalesforceV2", FabricType: "Salesforce"},
	Entry{ADFType: "AzureKeyVault", FabricType: "AzureKeyVault", Confidence: ConfidenceLow,
		Notes: "Key Vault references are resolved through Fabric connections, not a separate connection item"},
)

// fallbackTable holds approximate mappings consulted only when the direct
// table has no entry. Results from it carry Medium confidence.
var fallbackTable = mustRegister(NewRegistry(),
	Entry{ADFType: "CommonDataServiceForApps", FabricType: "Dataverse", Confidence: ConfidenceMedium},
	Entry{ADFType: "DynamicsCrm", FabricType: "Dataverse", Confidence: ConfidenceMedium},
	Entry{ADFType: "Dynamics", FabricType: "Dataverse", Confidence: ConfidenceMedium},
	Entry{ADFType: "SharePointOnlineList", FabricType: "SharePoint", Confidence: ConfidenceMedium},
	Entry{ADFType: "CosmosDbMongoDbApi", FabricType: "MongoDB", Confidence: ConfidenceMedium},
	Entry{ADFType: "MongoDbAtlas", FabricType: "MongoDB", Confidence: ConfidenceMedium},
	Entry{ADFType: "MongoDb", FabricType: "MongoDB", Confidence: ConfidenceMedium},
	Entry{ADFType: "AzureDatabricksDeltaLake", FabricType: "AzureDatabricks", Confidence: ConfidenceMedium},
	Entry{ADFType: "AzureSearch", FabricType: "AzureAISearch", Confidence: ConfidenceMedium},
)

// specialPrefixes mark connector families that always need custom property
// translation.
var specialPrefixes = []string{"custom"}

// Direct returns the direct mapping table.
func Direct() *Registry {
	return directTable
}
