package payload

import (
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlaswifi/internal/filter"
	"atlaswifi/internal/mac"
	"atlaswifi/internal/selection"
	"atlaswifi/internal/wifi"
)

func newTestBuilder(t *testing.T, filters filter.Set, sorting selection.Sorting) *Builder {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	b := NewBuilder(DefaultOptions(), logger)
	require.NoError(t, b.Configure(filters, sorting))
	return b
}

func ap(t *testing.T, address, name string, rssi int16) *wifi.AccessPoint {
	t.Helper()
	ssid, err := wifi.NewSSID(name)
	require.NoError(t, err)
	return &wifi.AccessPoint{MACAddress: address, SSID: ssid, RSSI: rssi}
}

func decode(t *testing.T, address string) mac.Address {
	t.Helper()
	addr, err := mac.Decode(address, true)
	require.NoError(t, err)
	return addr
}

type recordingObserver struct {
	valid, filteredOut int
	built              []Payload
	failed             []error
}

func (r *recordingObserver) AccessPointsFiltered(valid, filteredOut int) {
	r.valid += valid
	r.filteredOut += filteredOut
}

func (r *recordingObserver) PayloadBuilt(p Payload) { r.built = append(r.built, p) }

func (r *recordingObserver) BuildFailed(err error) { r.failed = append(r.failed, err) }

// TestBuilder_Configure tests sorting validation
func TestBuilder_Configure(t *testing.T) {
	b := newTestBuilder(t, filter.SSIDEmpty, selection.SortingRSSI)

	err := b.Configure(filter.All, selection.Sorting(2))
	assert.ErrorIs(t, err, ErrInvalidSorting)
	assert.Equal(t, Config{Filters: filter.SSIDEmpty, Sorting: selection.SortingRSSI}, b.Config())

	require.NoError(t, b.Configure(filter.All|0x40, selection.SortingNone))
	assert.Equal(t, Config{Filters: filter.All | 0x40, Sorting: selection.SortingNone}, b.Config())
}

// TestBuilder_RSSIScenario tests selection of the two strongest access points
func TestBuilder_RSSIScenario(t *testing.T) {
	b := newTestBuilder(t, filter.All, selection.SortingRSSI)
	list := wifi.List{
		ap(t, "3C:52:82:00:00:01", "Office", -50),
		ap(t, "3C:52:82:00:00:02", "Lobby", -80),
		ap(t, "3C:52:82:00:00:03", "Lab", -40),
	}

	p, err := b.Build(list)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Count)
	assert.Equal(t, [Size]byte{
		0x3C, 0x52, 0x82, 0x00, 0x00, 0x03,
		0x3C, 0x52, 0x82, 0x00, 0x00, 0x01,
	}, p.Bytes)
	assert.Equal(t, "3C52820000033C5282000001", p.Hex())
	assert.Equal(t, []mac.Address{decode(t, "3C:52:82:00:00:03"), decode(t, "3C:52:82:00:00:01")}, p.MACs())

	assert.Equal(t, wifi.StatusSent, list[0].Status)
	assert.Equal(t, wifi.StatusValid, list[1].Status)
	assert.Equal(t, wifi.StatusSent, list[2].Status)
}

// TestBuilder_ListOrder tests selection without sorting
func TestBuilder_ListOrder(t *testing.T) {
	b := newTestBuilder(t, filter.LocallyAdministered, selection.SortingNone)
	list := wifi.List{
		ap(t, "01:00:5E:00:00:FB", "mdns", -10),
		ap(t, "DA:A1:19:00:00:01", "Random", -20),
		ap(t, "3C:52:82:00:00:02", "Office", -90),
		ap(t, "3C:52:82:00:00:03", "Lab", -30),
		ap(t, "3C:52:82:00:00:04", "Lobby", -20),
	}

	p, err := b.Build(list)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Count)
	assert.Equal(t, []mac.Address{decode(t, "3C:52:82:00:00:02"), decode(t, "3C:52:82:00:00:03")}, p.MACs())
	assert.Equal(t, wifi.StatusValid, list[4].Status)
}

// TestBuilder_SingleMAC tests zero padding when only one access point survives
func TestBuilder_SingleMAC(t *testing.T) {
	b := newTestBuilder(t, filter.SSIDEmpty|filter.SSIDBlacklist, selection.SortingRSSI)
	list := wifi.List{
		ap(t, "3C:52:82:00:00:01", "", -30),
		ap(t, "3C:52:82:00:00:02", "My-Android-Phone", -40),
		ap(t, "a4:2b:b0:aa:bb:cc", "Home", -70),
	}

	p, err := b.Build(list)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Count)
	assert.Equal(t, [Size]byte{0xA4, 0x2B, 0xB0, 0xAA, 0xBB, 0xCC}, p.Bytes)
}

// TestBuilder_RepeatedAttempts tests that sent access points are not reused
func TestBuilder_RepeatedAttempts(t *testing.T) {
	b := newTestBuilder(t, 0, selection.SortingRSSI)
	list := wifi.List{
		ap(t, "3C:52:82:00:00:01", "a", -50),
		ap(t, "3C:52:82:00:00:02", "b", -60),
		ap(t, "3C:52:82:00:00:03", "c", -40),
	}

	first, err := b.Build(list)
	require.NoError(t, err)
	assert.Equal(t, []mac.Address{decode(t, "3C:52:82:00:00:03"), decode(t, "3C:52:82:00:00:01")}, first.MACs())

	second, err := b.Build(list)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Count)
	assert.Equal(t, []mac.Address{decode(t, "3C:52:82:00:00:02")}, second.MACs())

	third, err := b.Build(list)
	assert.ErrorIs(t, err, ErrNoneValidAccessPoint)
	assert.Equal(t, Payload{}, third)

	for _, a := range list {
		assert.Equal(t, wifi.StatusSent, a.Status)
	}
}

// TestBuilder_SentNotRefiltered tests that a second pass leaves sent records alone
func TestBuilder_SentNotRefiltered(t *testing.T) {
	b := newTestBuilder(t, 0, selection.SortingNone)
	list := wifi.List{
		ap(t, "3C:52:82:00:00:01", "a", -50),
		ap(t, "3C:52:82:00:00:02", "b", -60),
	}

	_, err := b.Build(list)
	require.NoError(t, err)

	// A malformed address on a sent record is never decoded again
	list[0].MACAddress = "garbage"
	list = append(list, ap(t, "3C:52:82:00:00:03", "c", -70))

	p, err := b.Build(list)
	require.NoError(t, err)
	assert.Equal(t, []mac.Address{decode(t, "3C:52:82:00:00:03")}, p.MACs())
	assert.Equal(t, wifi.StatusSent, list[0].Status)
}

// TestBuilder_Errors tests fail-fast error reporting
func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		list    func(t *testing.T) wifi.List
		wantErr error
	}{
		{
			name:    "Nil list",
			list:    func(t *testing.T) wifi.List { return nil },
			wantErr: ErrNullParameter,
		},
		{
			name:    "Empty list",
			list:    func(t *testing.T) wifi.List { return wifi.List{} },
			wantErr: ErrAccessPointListSize,
		},
		{
			name: "Oversized list",
			list: func(t *testing.T) wifi.List {
				list := make(wifi.List, wifi.MaxAccessPoints+1)
				for i := range list {
					list[i] = ap(t, "3C:52:82:00:00:01", "x", -50)
				}
				return list
			},
			wantErr: ErrAccessPointListSize,
		},
		{
			name:    "Nil entry",
			list:    func(t *testing.T) wifi.List { return wifi.List{ap(t, "3C:52:82:00:00:01", "x", -50), nil} },
			wantErr: ErrNullParameter,
		},
		{
			name:    "Bad separator",
			list:    func(t *testing.T) wifi.List { return wifi.List{ap(t, "3C.52.82.00.00.01", "x", -50)} },
			wantErr: ErrMacAddressSeparator,
		},
		{
			name:    "Bad digit",
			list:    func(t *testing.T) wifi.List { return wifi.List{ap(t, "3C:52:82:00:00:0G", "x", -50)} },
			wantErr: ErrMacAddressFormat,
		},
		{
			name: "Only reserved and multicast",
			list: func(t *testing.T) wifi.List {
				return wifi.List{
					ap(t, "00:00:00:00:00:00", "x", -50),
					ap(t, "FF:00:FF:00:FF:00", "x", -50),
					ap(t, "01:80:C2:00:00:0E", "x", -50),
				}
			},
			wantErr: ErrNoneValidAccessPoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t, filter.All, selection.SortingRSSI)
			p, err := b.Build(tt.list(t))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, [Size]byte{}, p.Bytes)
			assert.Equal(t, 0, p.Count)
		})
	}
}

// TestBuilder_Options tests the parameter check and error reporting switches
func TestBuilder_Options(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	t.Run("Without parameter checks", func(t *testing.T) {
		b := NewBuilder(Options{CheckParameters: false, ReportErrors: true}, logger)

		p, err := b.Build(wifi.List{ap(t, "3C-52-82-00-00-01", "x", -50), nil})
		require.NoError(t, err)
		assert.Equal(t, 1, p.Count)
		assert.Equal(t, []mac.Address{decode(t, "3C:52:82:00:00:01")}, p.MACs())

		_, err = b.Build(wifi.List{})
		assert.ErrorIs(t, err, ErrNoneValidAccessPoint)
	})

	t.Run("Without error reporting", func(t *testing.T) {
		observer := &recordingObserver{}
		b := NewBuilder(Options{CheckParameters: true, ReportErrors: false}, logger)
		b.SetObserver(observer)

		p, err := b.Build(wifi.List{})
		assert.NoError(t, err)
		assert.Equal(t, Payload{}, p)
		require.Len(t, observer.failed, 1)
		assert.ErrorIs(t, observer.failed[0], ErrAccessPointListSize)
	})
}

// TestBuilder_Observer tests outcome reporting
func TestBuilder_Observer(t *testing.T) {
	observer := &recordingObserver{}
	b := newTestBuilder(t, filter.SSIDEmpty, selection.SortingNone)
	b.SetObserver(observer)

	list := wifi.List{
		ap(t, "3C:52:82:00:00:01", "", -50),
		ap(t, "3C:52:82:00:00:02", "b", -60),
		ap(t, "FF:FF:FF:FF:FF:FF", "c", -60),
	}

	_, err := b.Build(list)
	require.NoError(t, err)
	_, err = b.Build(list)
	assert.ErrorIs(t, err, ErrNoneValidAccessPoint)

	assert.Equal(t, 1, observer.valid)
	assert.Equal(t, 2, observer.filteredOut)
	require.Len(t, observer.built, 1)
	assert.Equal(t, 1, observer.built[0].Count)
	require.Len(t, observer.failed, 1)
}

// TestBuilder_ObserverAfterFilterError tests that decisions made before an
// aborted filter pass are still reported
func TestBuilder_ObserverAfterFilterError(t *testing.T) {
	observer := &recordingObserver{}
	b := newTestBuilder(t, filter.All, selection.SortingRSSI)
	b.SetObserver(observer)

	list := wifi.List{
		ap(t, "3C:52:82:00:00:01", "a", -50),
		ap(t, "FF:FF:FF:FF:FF:FF", "b", -40),
		ap(t, "3C-52-82-00-00-02", "c", -60),
	}

	_, err := b.Build(list)
	require.ErrorIs(t, err, ErrMacAddressSeparator)
	assert.Equal(t, 1, observer.valid)
	assert.Equal(t, 1, observer.filteredOut)

	list[2].MACAddress = "3C:52:82:00:00:02"
	p, err := b.Build(list)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Count)

	// Every access point is counted exactly once across both passes
	assert.Equal(t, 2, observer.valid)
	assert.Equal(t, 1, observer.filteredOut)
	assert.Len(t, observer.failed, 1)
	assert.Len(t, observer.built, 1)
}

// TestBuilder_IndependentPipelines tests concurrent use of separate builders
func TestBuilder_IndependentPipelines(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]Payload, 8)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger := logrus.New()
			logger.SetOutput(io.Discard)
			b := NewBuilder(DefaultOptions(), logger)
			if err := b.Configure(0, selection.SortingRSSI); err != nil {
				return
			}
			list := wifi.List{
				{MACAddress: "3C:52:82:00:00:01", RSSI: -50},
				{MACAddress: "3C:52:82:00:00:02", RSSI: -40},
			}
			results[i], _ = b.Build(list)
		}(i)
	}
	wg.Wait()

	for _, p := range results {
		assert.Equal(t, 2, p.Count)
		assert.Equal(t, "3C52820000023C5282000001", p.Hex())
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "mac_address_format", Kind(mac.ErrFormat))
	assert.Equal(t, "invalid_sorting", Kind(ErrInvalidSorting))
	assert.Equal(t, "unknown", Kind(assert.AnError))
}
