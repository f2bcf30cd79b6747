package main

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	rates "github.com/malusev998/exchange-rates"
	"github.com/malusev998/exchange-rates/fetchers"
	"github.com/malusev998/exchange-rates/storage"
)

type (
	StorageConfig map[storage.Provider]interface{}
	Config        struct {
		Provider      rates.Provider
		Fetcher       fetchers.Config
		Storage       []storage.Provider
		StorageConfig StorageConfig
		Currencies    []string
		KeepEmpty     bool
	}
)

const defaultTable = "exchange_rates"

func setDefaults() {
	viper.SetDefault("provider", "privatbank")
	viper.SetDefault("fetchers.privatbank.url", fetchers.PrivatBankURL)
	viper.SetDefault("fetchers.nbu.url", fetchers.NBUURL)
	viper.SetDefault("http.timeout", time.Duration(0))
	viper.SetDefault("http.retries", 0)
	viper.SetDefault("http.retry_delay", 500*time.Millisecond)
	viper.SetDefault("currencies", rates.DefaultCurrencies)
	viper.SetDefault("keep_empty", false)
	viper.SetDefault("storage", []string{})
	viper.SetDefault("migrate", false)
	viper.SetDefault("location", "Local")

	viper.SetDefault("databases.mysql.user", "")
	viper.SetDefault("databases.mysql.password", "")
	viper.SetDefault("databases.mysql.addr", "localhost:3306")
	viper.SetDefault("databases.mysql.db", "")
	viper.SetDefault("databases.mysql.table", defaultTable)
	viper.SetDefault("databases.mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("databases.mongodb.database", "exchange_rates")
	viper.SetDefault("databases.mongodb.collection", defaultTable)
	viper.SetDefault("databases.postgres.url", "")
	viper.SetDefault("databases.postgres.table", defaultTable)
}

func getMysqlDSN() string {
	mysqlDriverConfig := mysql.NewConfig()
	mysqlDriverConfig.User = viper.GetString("databases.mysql.user")
	mysqlDriverConfig.Passwd = viper.GetString("databases.mysql.password")
	mysqlDriverConfig.Addr = viper.GetString("databases.mysql.addr")
	mysqlDriverConfig.Net = "tcp"
	mysqlDriverConfig.DBName = viper.GetString("databases.mysql.db")
	mysqlDriverConfig.ParseTime = true

	return mysqlDriverConfig.FormatDSN()
}

func fetcherURL(provider rates.Provider) string {
	switch provider {
	case rates.NBUProvider:
		return viper.GetString("fetchers.nbu.url")
	default:
		return viper.GetString("fetchers.privatbank.url")
	}
}

func getConfig() (*Config, error) {
	var provider rates.Provider
	if err := provider.UnmarshalText([]byte(viper.GetString("provider"))); err != nil {
		return nil, err
	}

	retries := viper.GetInt("http.retries")
	if retries < 0 {
		return nil, fmt.Errorf("http.retries must not be negative, got %d", retries)
	}

	storages, err := storage.ConvertToProvidersFromStringSlice(viper.GetStringSlice("storage"))
	if err != nil {
		return nil, err
	}

	storageBaseConfig := storage.BaseConfig{
		Migrate: viper.GetBool("migrate"),
	}

	return &Config{
		Provider: provider,
		Fetcher: fetchers.Config{
			URL: fetcherURL(provider),
			HTTP: fetchers.HTTPConfig{
				Timeout:    viper.GetDuration("http.timeout"),
				Retries:    uint64(retries),
				RetryDelay: viper.GetDuration("http.retry_delay"),
			},
		},
		Storage: storages,
		StorageConfig: StorageConfig{
			storage.MySQL: storage.MySQLConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: getMysqlDSN(),
				TableName:        viper.GetString("databases.mysql.table"),
			},
			storage.MongoDB: storage.MongoDBConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: viper.GetString("databases.mongodb.uri"),
				Database:         viper.GetString("databases.mongodb.database"),
				Collection:       viper.GetString("databases.mongodb.collection"),
			},
			storage.Postgres: storage.PostgresConfig{
				BaseConfig:       storageBaseConfig,
				ConnectionString: viper.GetString("databases.postgres.url"),
				TableName:        viper.GetString("databases.postgres.table"),
			},
		},
		Currencies: viper.GetStringSlice("currencies"),
		KeepEmpty:  viper.GetBool("keep_empty"),
	}, nil
}
