package loader

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/kataras/pio"
	"github.com/natansdj/electives/types"
)

type serviceInfo struct {
	Name     string   `desc:"Service"`
	LogLevel string   `desc:"Log Level"`
	Network  []string `desc:"Network"`
}

type databaseInfo struct {
	Driver             string        `desc:"Driver"`
	Address            string        `desc:"Address"`
	Username           string        `desc:"User"`
	Password           string        `desc:"Password" hidden:"true"`
	Database           string        `desc:"Database"`
	PoolSize           int           `desc:"Pool Size"`
	WaitForConnections bool          `desc:"Wait For Connections"`
	QueueLimit         int           `desc:"Queue Limit (0 = unbounded)"`
	AcquireTimeout     time.Duration `desc:"Acquire Timeout"`
	KeepAliveInterval  time.Duration `desc:"Keep-Alive Interval"`
}

type httpInfo struct {
	Port           string        `desc:"Port"`
	Mode           string        `desc:"Mode"`
	Gzip           bool          `desc:"Gzip"`
	RequestTimeout time.Duration `desc:"Request Timeout"`
	HealthTimeout  time.Duration `desc:"Health Timeout"`
	ShutdownGrace  time.Duration `desc:"Shutdown Grace"`
	ReviewRoutes   bool          `desc:"Review Routes"`
}

// Launching prints the effective configuration to stdout
func Launching(config *types.Config) {
	LaunchingTo(os.Stdout, config)
}

func LaunchingTo(w io.Writer, config *types.Config) {
	var printer = launcher{
		Width:  100,
		writer: w,
	}
	printer.init()

	printer.hr()
	printer.printTitle("Electives Review API", "github.com/natansdj/electives")

	printer.printStruct(serviceInfo{
		Name:     config.Environment.GetName(),
		LogLevel: config.Environment.GetLogLevel(),
		Network:  Network(),
	})

	var pool types.IPool
	db := databaseInfo{Driver: config.GetDriver()}

	if db.Driver == types.DRIVER_SQLITE {
		printer.printHeading("SqLite Client")
		db.Database = config.SqLite.GetPath()
		pool = config.SqLite.GetPool()
	} else {
		printer.printHeading("MySQL / MariaDB Client")
		db.Address = config.MySQL.GetHost() + ":" + config.MySQL.GetPort()
		db.Username = config.MySQL.GetUsername()
		db.Password = config.MySQL.GetPassword()
		db.Database = config.MySQL.GetDatabase()
		pool = config.MySQL.GetPool()
	}

	db.PoolSize = pool.GetSize()
	db.WaitForConnections = pool.GetWaitForConnections()
	db.QueueLimit = pool.GetQueueLimit()
	db.AcquireTimeout = pool.GetAcquireTimeout()
	db.KeepAliveInterval = pool.GetKeepAliveInterval()
	printer.printStruct(db)

	printer.printHeading("HTTP Server")
	printer.printStruct(httpInfo{
		Port:           config.Http.GetPort(),
		Mode:           config.Http.GetMode(),
		Gzip:           config.Http.GetGzip(),
		RequestTimeout: config.Http.GetRequestTimeout(),
		HealthTimeout:  config.Http.GetHealthTimeout(),
		ShutdownGrace:  config.Http.GetShutdownGrace(),
		ReviewRoutes:   config.Http.ReviewRoutes,
	})
}

type launcher struct {
	Width int

	writer     io.Writer
	separator  string
	separator2 string
}

func (l *launcher) init() {
	l.separator = strings.Repeat("/", l.Width)
	l.separator += "\n"
	l.separator2 = "// " + strings.Repeat("-", l.Width-6) + " //"
	l.separator2 += "\n"

	if l.writer == nil {
		l.writer = os.Stdout
	}
}

func (l *launcher) printTitle(title string, maintener string) {
	var format = "// %s %53s //\n"

	fmt.Fprintf(l.writer, format, pio.Rich(fmt.Sprintf("%-40s", title), pio.Green, pio.Bold), maintener)
	l.hr()
}

func (l *launcher) printHeading(title string) {
	lenTitle := len(title)
	spaceL := (l.Width - 6 - lenTitle) / 2
	spaceR := spaceL

	if (lenTitle % 2) == 1 {
		spaceR++
	}

	var format = "// %-" + fmt.Sprintf("%v", spaceL) + "s%s%-" + fmt.Sprintf("%v", spaceR) + "s //\n"

	fmt.Fprintf(l.writer, format, "", pio.Rich(title, pio.Cyan), "")
	l.hr2()
}

func (l *launcher) printData(field string, value any) {
	if value == nil {
		return
	}

	if d, ok := value.(time.Duration); ok {
		fmt.Fprintf(l.writer, "// %-30s : %-61s //\n", field, d.String())
		return
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.String:
		var format = "// %-30s : %-61s //\n"
		fmt.Fprintf(l.writer, format, field, value)
	case reflect.Bool:
		var format = "// %-30s : %-61t //\n"
		fmt.Fprintf(l.writer, format, field, value)
	case reflect.Int:
		var format = "// %-30s : %-61d //\n"
		fmt.Fprintf(l.writer, format, field, value)
	}
}

func (l *launcher) printStruct(info any) {
	rt := reflect.TypeOf(info)

	if rt.Kind() == reflect.Pointer {
		l.printStruct(reflect.ValueOf(info).Elem().Interface())
		return
	}

	if rt.Kind() != reflect.Struct {
		panic("bad type " + rt.Kind().String())
	}

	v := reflect.ValueOf(info)
	for i := 0; i < v.NumField(); i++ {
		f := rt.Field(i)

		name := f.Name
		if f.Tag.Get("desc") != "" {
			name = strings.Split(f.Tag.Get("desc"), ",")[0]
		}

		if f.Type.Kind() == reflect.Slice {
			if vals, ok := v.Field(i).Interface().([]string); ok {
				for _, val := range vals {
					l.printData(name, val)
				}
			}
			continue
		}

		if f.Tag.Get("hidden") != "" {
			if v.Field(i).String() != "" {
				l.printData(name, "********")
			}
			continue
		}

		if v.Field(i).Interface() != "" {
			l.printData(name, v.Field(i).Interface())
		}
	}
	l.hr()
}

func (l *launcher) hr() {
	fmt.Fprintf(l.writer, "%s", l.separator)
}

func (l *launcher) hr2() {
	fmt.Fprintf(l.writer, "%s", l.separator2)
}
