package sqlite

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/julianstephens/habitvault/internal/constants"
	"github.com/julianstephens/habitvault/internal/models"
)

var errNoSettings = errors.New("settings not found")

func (s *Store) GetSettings() (models.Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	settings := models.Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		switch key {
		case constants.SettingAPIURL:
			settings.APIURL = value
		case constants.SettingUser:
			if value == "" {
				break
			}
			var u models.User
			if err := json.Unmarshal([]byte(value), &u); err != nil {
				return models.Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.User = &u
		case constants.SettingDarkMode:
			settings.DarkMode, err = strconv.ParseBool(value)
		case constants.SettingShowMotivationalQuote:
			settings.ShowMotivationalQuote, err = strconv.ParseBool(value)
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled, err = strconv.ParseBool(value)
		case constants.SettingNetworkErrorPolicy:
			settings.NetworkErrorPolicy = value
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingAnalyticsStartDate:
			settings.AnalyticsStartDate = value
		case constants.SettingAnalyticsEndDate:
			settings.AnalyticsEndDate = value
		case constants.SettingAnalyticsPeriod:
			settings.AnalyticsPeriod = value
		}
		if err != nil {
			return models.Settings{}, fmt.Errorf("parsing %s: %w", key, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	if count == 0 {
		return models.Settings{}, errNoSettings
	}

	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	user := ""
	if settings.User != nil {
		b, err := json.Marshal(settings.User)
		if err != nil {
			return fmt.Errorf("encoding user: %w", err)
		}
		user = string(b)
	}

	values := [][2]string{
		{constants.SettingAPIURL, settings.APIURL},
		{constants.SettingUser, user},
		{constants.SettingDarkMode, strconv.FormatBool(settings.DarkMode)},
		{constants.SettingShowMotivationalQuote, strconv.FormatBool(settings.ShowMotivationalQuote)},
		{constants.SettingNotificationsEnabled, strconv.FormatBool(settings.NotificationsEnabled)},
		{constants.SettingNetworkErrorPolicy, settings.NetworkErrorPolicy},
		{constants.SettingTimezone, settings.Timezone},
		{constants.SettingAnalyticsStartDate, settings.AnalyticsStartDate},
		{constants.SettingAnalyticsEndDate, settings.AnalyticsEndDate},
		{constants.SettingAnalyticsPeriod, settings.AnalyticsPeriod},
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, kv := range values {
		if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
			return fmt.Errorf("saving %s: %w", kv[0], err)
		}
	}

	return tx.Commit()
}
